// Package main hosts the subparse CLI.
//
// Commands stream SSA/ASS scripts through a decoding session, inspect the
// character set handling for a file, browse the cue store and scaffold the
// configuration file. Decoding logic lives in the internal packages; this
// package only resolves configuration and renders results.
package main
