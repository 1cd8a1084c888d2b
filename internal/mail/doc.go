// Package mail abstracts the privileged mail store primitives behind
// Go interfaces. The Bridge implementation forwards each primitive as
// a correlated call over the native messaging connection; handlers and
// tests depend only on the Client and WindowAPI interfaces.
package mail
