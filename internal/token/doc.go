// Package token signs document-editor configuration payloads.
//
// The document server rejects editor configurations whose token does not
// verify against the shared secret, so the signed payload must contain
// exactly the security-relevant subset of the configuration. Building
// that subset is the editor package's job; this package only turns a
// payload map into a compact HS256 token.
//
// An unset secret disables signing entirely: Sign returns an empty
// token and no error, and callers send the configuration untokenized.
package token
