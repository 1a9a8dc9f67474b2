// Package dbus bridges the org.freedesktop.Notifications D-Bus interface
// onto the toast queue.
//
// The server claims the notification bus name and turns Notify calls into
// toasts: critical urgency becomes an ERROR toast, the first action pair
// becomes the action button, and x-snackbar-* hints carry the fields the
// freedesktop protocol has no room for. CloseNotification hides the toast
// and every removal is reported back with NotificationClosed. The client
// side is used by the snackbar CLI to talk to a running daemon.
package dbus
