// Package daemon provides the main orchestration for snackbard.
// It mounts the toast manager and wires the D-Bus bridge, web bridge,
// audio player, theme loader, history journal, metrics and configuration
// hot-reload around it.
package daemon
