package notation

import (
	"fmt"

	"github.com/sells-group/geon/internal/model"
)

// Diagnostic records a line the parser skipped.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// FormatError reports input that cannot be partially reconstructed.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("notation: line %d: %s", e.Line, e.Msg)
}

// blockParser turns tokenized lines into a generic Value tree. Indentation
// is compared by raw character count; child regions start at whatever
// indentation their first line carries.
type blockParser struct {
	maxDepth int
	diags    []Diagnostic
	err      error
}

func (p *blockParser) skip(ln Line, msg string) {
	p.diags = append(p.diags, Diagnostic{Line: ln.Number, Message: msg})
}

// tooDeep records a FormatError once depth passes the limit.
func (p *blockParser) tooDeep(ln Line, depth int) bool {
	if p.err != nil {
		return true
	}
	if p.maxDepth > 0 && depth > p.maxDepth {
		p.err = &FormatError{Line: ln.Number, Msg: fmt.Sprintf("nesting exceeds maximum depth %d", p.maxDepth)}
		return true
	}
	return false
}

// parseBlock consumes key/value lines at exactly base, starting at start,
// until a shallower line or end of input.
func (p *blockParser) parseBlock(lines []Line, start, base, depth int) (model.Mapping, int) {
	var m model.Mapping
	i := start
	for i < len(lines) {
		if p.err != nil {
			return m, len(lines)
		}
		ln := lines[i]
		if ln.Indent < base {
			break
		}
		if ln.Indent > base {
			p.skip(ln, "unexpected indentation")
			i++
			continue
		}
		if isListItem(ln.Content) {
			p.skip(ln, "list item outside a list")
			i++
			continue
		}
		key, value, ok := splitKeyValue(ln.Content)
		if !ok || key == "" {
			p.skip(ln, "expected KEY: value")
			i++
			continue
		}
		if value != "" {
			m.Set(key, model.ScalarValue(value))
			i++
			continue
		}
		child, next := p.collectChildren(lines, i+1, base, depth+1)
		m.Set(key, child)
		i = next
	}
	return m, i
}

// collectChildren gathers the block under a header at parentIndent. The first
// line decides: a list marker opens a list, anything else a nested mapping.
func (p *blockParser) collectChildren(lines []Line, start, parentIndent, depth int) (model.Value, int) {
	if start >= len(lines) {
		return model.ListValue(), start
	}
	first := lines[start]
	if p.tooDeep(first, depth) {
		return model.ListValue(), len(lines)
	}

	var childIndent int
	switch {
	case first.Indent > parentIndent:
		childIndent = first.Indent
	case first.Indent == parentIndent && isListItem(first.Content):
		// compact sequence: "- " items level with their header
		childIndent = parentIndent
	default:
		return model.ListValue(), start
	}

	if isListItem(first.Content) {
		return p.collectList(lines, start, childIndent, depth)
	}
	m, next := p.parseBlock(lines, start, childIndent, depth)
	return model.MappingValue(m), next
}

// collectList reads "- " items at exactly childIndent. Lines deeper than the
// marker belong to the preceding item.
func (p *blockParser) collectList(lines []Line, start, childIndent, depth int) (model.Value, int) {
	items := []model.Value{}
	i := start
	for i < len(lines) {
		if p.err != nil {
			return model.ListValue(items...), len(lines)
		}
		ln := lines[i]
		if ln.Indent < childIndent || (ln.Indent == childIndent && !isListItem(ln.Content)) {
			break
		}
		if ln.Indent > childIndent {
			p.skip(ln, "unexpected indentation")
			i++
			continue
		}

		j := i + 1
		for j < len(lines) && lines[j].Indent > childIndent {
			j++
		}
		sub := lines[i+1 : j]
		text := itemText(ln.Content)
		key, value, hasKV := splitKeyValue(text)

		switch {
		case hasKV && key == RecordSentinel:
			var m model.Mapping
			m.Set(key, model.ScalarValue(value))
			mergeInto(&m, p.fold(sub, depth+1))
			m.Set(key, model.ScalarValue(value))
			items = append(items, model.MappingValue(m))

		case len(sub) > 0:
			items = append(items, p.itemWithBlock(ln, text, key, value, hasKV, sub, childIndent, depth+1))

		default:
			items = append(items, model.ScalarValue(text))
		}
		i = j
	}
	return model.ListValue(items...), i
}

// itemWithBlock builds the mapping for a list item followed by deeper lines.
// "- key:" with an empty value takes the block as its own value.
func (p *blockParser) itemWithBlock(ln Line, text, key, value string, hasKV bool, sub []Line, childIndent, depth int) model.Value {
	var m model.Mapping
	switch {
	case hasKV && key != "" && value == "":
		child, next := p.collectChildren(sub, 0, childIndent, depth)
		m.Set(key, child)
		if next < len(sub) {
			mergeInto(&m, p.fold(sub[next:], depth))
		}
		return model.MappingValue(m)
	case hasKV && key != "":
		m.Set(key, model.ScalarValue(value))
	case text != "":
		m.Set(ValueKey, model.ScalarValue(text))
	}
	mergeInto(&m, p.fold(sub, depth))
	return model.MappingValue(m)
}

// fold parses lines as one mapping. Each run starts at the indentation of its
// first line, so lines shallower than the first sub-block are kept as
// further entries instead of being dropped.
func (p *blockParser) fold(lines []Line, depth int) model.Mapping {
	var m model.Mapping
	if len(lines) == 0 {
		return m
	}
	if p.tooDeep(lines[0], depth) {
		return m
	}
	k := 0
	for k < len(lines) && p.err == nil {
		part, next := p.parseBlock(lines, k, lines[k].Indent, depth)
		mergeInto(&m, part)
		if next <= k {
			next = k + 1
		}
		k = next
	}
	return m
}

func mergeInto(dst *model.Mapping, src model.Mapping) {
	for _, e := range src.Entries {
		dst.Set(e.Key, e.Value)
	}
}
