package lang

import (
	"regexp"
	"strings"
)

// Output text carries inline style tags such as <location>, <player>,
// <item> and <monospaced>. A tag is closed by its own name or by the
// shorthand </>. Transports that cannot style text strip the tags;
// ANSI-capable ones translate them to escape sequences.

var styleTagRe = regexp.MustCompile(`</?[a-z]*>`)

// StripStyles removes all style tags, leaving plain text.
func StripStyles(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return styleTagRe.ReplaceAllString(s, "")
}

// ansiOpen maps a tag name to its ANSI escape sequence.
var ansiOpen = map[string]string{
	"location":   "\x1b[1m",
	"player":     "\x1b[32m",
	"living":     "\x1b[32m",
	"item":       "\x1b[33m",
	"exit":       "\x1b[36m",
	"dim":        "\x1b[2m",
	"bright":     "\x1b[1m",
	"ul":         "\x1b[4m",
	"rev":        "\x1b[7m",
	"monospaced": "",
}

const ansiReset = "\x1b[0m"

// ApplyAnsiStyles translates style tags to ANSI escapes. Closing tags
// reset all attributes; nesting is not tracked.
func ApplyAnsiStyles(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return styleTagRe.ReplaceAllStringFunc(s, func(tag string) string {
		name := strings.Trim(tag, "</>")
		if strings.HasPrefix(tag, "</") {
			if name == "monospaced" {
				return ""
			}
			return ansiReset
		}
		return ansiOpen[name]
	})
}
