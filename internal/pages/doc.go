// Package pages holds the viewer window's pages and its control flow:
// loading, file list, empty state, error, the editor viewer, and the
// create-document dialog, all navigated through the router.
package pages
