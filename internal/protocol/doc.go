// Package protocol defines the fixed action set exchanged between the
// unprivileged UI pages and the privileged background context, and the
// machinery on both sides of it: typed request/response structs, the
// background Dispatcher and the UI Client.
//
// The action names and request/response field names are a bit-exact
// wire contract; the two contexts cannot interoperate if either drifts.
// Every request receives exactly one response. The background side
// never lets an error cross the transport: handler failures become
// {success:false, error} replies and unrecognized actions an explicit
// {error: "Unknown action"} reply.
//
// Requests carry no correlation ids. This is safe because each caller
// flow issues one request and awaits its reply before issuing another;
// parallelizing call sites would require adding a request-id scheme
// first.
package protocol
