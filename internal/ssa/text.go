package ssa

import (
	"regexp"
	"strings"
)

var overrideBlock = regexp.MustCompile(`\{[^}]*\}`)

var escapeReplacer = strings.NewReplacer(`\N`, "\n", `\n`, "\n", `\h`, "\u00a0")

// PlainText strips override blocks such as {\i1} from dialogue text and turns
// the \N, \n and \h escapes into a newline and a non-breaking space.
func PlainText(text string) string {
	return escapeReplacer.Replace(overrideBlock.ReplaceAllString(text, ""))
}
