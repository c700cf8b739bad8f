package notation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Line is one non-blank source line.
type Line struct {
	Number  int    // 1-based line number in the source text
	Indent  int    // count of leading whitespace characters, tabs count as one
	Content string // trimmed text
}

// Tokenize splits text into non-blank lines annotated with indentation.
// Blank lines carry no structure and are dropped.
func Tokenize(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for i, l := range raw {
		content := strings.TrimSpace(l)
		if content == "" {
			continue
		}
		lead := l[:len(l)-len(strings.TrimLeftFunc(l, unicode.IsSpace))]
		lines = append(lines, Line{
			Number:  i + 1,
			Indent:  utf8.RuneCountInString(lead),
			Content: content,
		})
	}
	return lines
}

// splitKeyValue splits on the first colon. ok is false when there is none.
func splitKeyValue(s string) (key, value string, ok bool) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), true
}

func isListItem(content string) bool {
	return content == "-" || strings.HasPrefix(content, "- ")
}

func itemText(content string) string {
	return strings.TrimSpace(strings.TrimPrefix(content, "-"))
}
