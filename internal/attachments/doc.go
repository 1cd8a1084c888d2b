// Package attachments normalizes and resolves office-document
// attachment candidates.
//
// Received messages expose their attachments two ways: a stored
// attachment list, and the raw MIME part tree. The stored list is
// authoritative when non-empty; only when it is empty does the system
// fall back to scanning MIME parts, and the two sources are never
// merged. Compose windows track their attachments directly and need no
// MIME walking.
package attachments
