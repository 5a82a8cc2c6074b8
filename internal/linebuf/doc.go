// Package linebuf extracts complete lines from a growing UTF-8 text buffer.
package linebuf
