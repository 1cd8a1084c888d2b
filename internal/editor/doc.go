// Package editor manages embedded document editor sessions: building
// the editor configuration from a format's capability tags, signing
// its security-relevant subset, and routing save events back to a
// compose attachment or a file download.
package editor
