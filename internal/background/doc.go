// Package background implements the privileged side of the action
// protocol: the handler for each named action, the window tracking
// map, and blank-document template resolution. Handlers validate
// their request, perform the mail store operation through the Client
// interface, and return a typed response; the dispatcher converts any
// returned error into a failure reply.
package background
