package charset

import (
	"os"
	"strings"
)

// localeVars are consulted in POSIX precedence order; the first non-empty one
// decides the locale.
var localeVars = []string{"LC_ALL", "LC_CTYPE", "LANG"}

// LocaleCodeset returns the codeset named by the process locale, such as
// "ISO-8859-1" for "de_DE.ISO-8859-1@euro". It returns "" when the locale is
// unset, "C"/"POSIX", or carries no codeset.
func LocaleCodeset() string {
	return localeCodeset(os.Getenv)
}

func localeCodeset(getenv func(string) string) string {
	for _, key := range localeVars {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			continue
		}
		return codesetFromLocale(value)
	}
	return ""
}

func codesetFromLocale(locale string) string {
	if idx := strings.IndexByte(locale, '@'); idx >= 0 {
		locale = locale[:idx]
	}
	idx := strings.IndexByte(locale, '.')
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(locale[idx+1:])
}
