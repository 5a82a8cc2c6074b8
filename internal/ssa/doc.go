// Package ssa parses the dialogue portion of SubStation Alpha (SSA/ASS)
// scripts one line at a time.
//
// A State tracks where the parser is in the script: before the [Events]
// section, inside it, or after its Format line declared the column layout.
// Dialogue records are split generically by comma position so unknown
// columns between End and Text never break extraction.
package ssa
