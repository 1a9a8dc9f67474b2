// Package web exposes the toast queue to browser renderers.
//
// The REST API under /api mirrors the Host operations; /ws streams every
// published snapshot as JSON and accepts dismiss, hide, action and
// viewport messages from the page. A browser renderer is expected to
// report its width on load and on resize so the server can classify the
// viewport and the manager can center the stack on mobile.
package web
