// Package theme loads per-type color themes for toast renderers.
// Themes are TOML files in ~/.config/snackbar/themes/; bundled themes are
// embedded and a user file with the same name overrides them.
package theme
