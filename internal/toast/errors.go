package toast

import "errors"

// Manager and Host errors.
var (
	ErrNotReady         = errors.New("toast manager is not mounted")
	ErrAlreadyMounted   = errors.New("toast manager is already mounted")
	ErrClosed           = errors.New("toast manager is stopped")
	ErrNotFound         = errors.New("toast not found")
	ErrNoAction         = errors.New("toast has no action button")
	ErrActionInProgress = errors.New("toast action is already running")
)
