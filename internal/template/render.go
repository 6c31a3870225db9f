package template

import (
	"regexp"
	"strings"
)

// MissingTemplateMessage is the sentinel returned when rendering is asked
// for an absent template. Returned as content, not as an error, so a cycle
// is never aborted by a template gap.
const MissingTemplateMessage = "Error: message template is undefined."

var placeholderPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Render substitutes every [Name] token with vars[Name]. Tokens without a
// mapping are left verbatim; the second return reports whether any token
// was left unresolved so callers can flag degraded output.
func Render(templateString string, vars map[string]string) (string, bool) {
	if templateString == "" {
		return MissingTemplateMessage, false
	}

	out := templateString
	for name, value := range vars {
		out = strings.ReplaceAll(out, "["+name+"]", value)
	}
	return out, placeholderPattern.MatchString(out)
}
