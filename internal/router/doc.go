// Package router swaps pages in and out of a single mount point. It
// reproduces the single-threaded navigation discipline of the UI
// layer: one navigation at a time, later calls dropped while one is in
// flight, and every failure funneled into the error route.
package router
