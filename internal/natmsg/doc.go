// Package natmsg implements the native-messaging carrier between the
// mail client's extension shim and this host process.
//
// Frames are uint32 little-endian length-prefixed JSON, the standard
// browser native-messaging format. One pipe carries both directions of
// traffic: protocol action requests from the shim (answered in place),
// and the host's privileged primitive calls to the shim (correlated to
// their replies by uuid, since multiple may be in flight while a
// request handler runs). The action protocol riding on top stays
// correlation-free; pairing at this layer is a carrier concern.
package natmsg
