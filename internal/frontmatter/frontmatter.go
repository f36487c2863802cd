// Package frontmatter decodes and encodes the delimited key/value header
// that prefixes every Markdown post.
package frontmatter

import (
	"strings"
)

// Delimiter is the line that opens and closes a front-matter block.
const Delimiter = "---"

// Value is a front-matter value: either a scalar string or a list of strings.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// String constructs a scalar value.
func String(s string) Value {
	return Value{scalar: s}
}

// List constructs a list value.
func List(items ...string) Value {
	return Value{list: items, isList: true}
}

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.isList }

// Scalar returns the scalar form. For list values it joins the elements
// with ", " so callers that expect a display string still get one.
func (v Value) Scalar() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.scalar
}

// Items returns the list form. A scalar value yields a single-element list,
// an empty scalar yields nil.
func (v Value) Items() []string {
	if v.isList {
		return v.list
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// Field is one key/value pair in a front-matter block.
type Field struct {
	Key   string
	Value Value
}

// Fields is an ordered front-matter mapping. Order is preserved so that
// Encode reproduces the insertion order of the source document.
type Fields []Field

// Get returns the value for key and whether it was present.
func (f Fields) Get(key string) (Value, bool) {
	for _, fl := range f {
		if fl.Key == key {
			return fl.Value, true
		}
	}
	return Value{}, false
}

// Scalar returns the scalar value for key, or "" if absent.
func (f Fields) Scalar(key string) string {
	v, ok := f.Get(key)
	if !ok {
		return ""
	}
	return v.Scalar()
}

// Set replaces the value for key in place, or appends it if absent.
func (f *Fields) Set(key string, v Value) {
	for i, fl := range *f {
		if fl.Key == key {
			(*f)[i].Value = v
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: v})
}

// Delete removes key, preserving the order of the remaining fields.
func (f *Fields) Delete(key string) {
	for i, fl := range *f {
		if fl.Key == key {
			*f = append((*f)[:i], (*f)[i+1:]...)
			return
		}
	}
}

// Decode splits raw into front-matter fields and a Markdown body.
//
// A front-matter block is present only when the document starts with a
// delimiter line and a second delimiter line follows. Anything else makes
// the whole input the body with no fields. Lines without a colon are
// skipped, not an error.
func Decode(raw string) (Fields, string) {
	// Line endings are normalized before the split so the body comes out
	// the same whether or not a front-matter block is present.
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	if !strings.HasPrefix(text, Delimiter+"\n") {
		return nil, text
	}
	rest := text[len(Delimiter)+1:]
	end := findClosingDelimiter(rest)
	if end < 0 {
		return nil, text
	}

	block := rest[:end]
	body := rest[end:]
	// Skip the delimiter line itself, plus the single blank line Encode
	// emits after it, so decode(encode(f, body)) returns body unchanged.
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	body = strings.TrimPrefix(body, "\n")

	var fields Fields
	for _, line := range strings.Split(block, "\n") {
		colon := strings.Index(line, ":")
		if colon <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		rawVal := strings.TrimSpace(line[colon+1:])
		fields = append(fields, Field{Key: key, Value: decodeValue(rawVal)})
	}
	return fields, body
}

// findClosingDelimiter returns the offset in rest of the line that closes
// the block, or -1 if none exists.
func findClosingDelimiter(rest string) int {
	offset := 0
	for _, line := range strings.Split(rest, "\n") {
		if line == Delimiter {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}

// decodeValue applies the value typing rules: quoted scalar, bracketed
// list, or plain string.
func decodeValue(raw string) Value {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') ||
			(raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return String(raw[1 : len(raw)-1])
		}
	}
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		interior := raw[1 : len(raw)-1]
		var items []string
		for _, part := range strings.Split(interior, ",") {
			item := stripQuoteChars(strings.TrimSpace(part))
			if item != "" {
				items = append(items, item)
			}
		}
		return List(items...)
	}
	return String(raw)
}

func stripQuoteChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' {
			return -1
		}
		return r
	}, s)
}

// Encode renders fields and body into the canonical document form: every
// scalar double-quoted, lists as ["a", "b"], a blank line between the
// closing delimiter and the body.
func Encode(fields Fields, body string) string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, fl := range fields {
		b.WriteString(fl.Key)
		b.WriteString(": ")
		b.WriteString(encodeValue(fl.Value))
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteString("\n\n")
	b.WriteString(body)
	return b.String()
}

func encodeValue(v Value) string {
	if v.isList {
		quoted := make([]string, len(v.list))
		for i, item := range v.list {
			quoted[i] = `"` + item + `"`
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}
	return `"` + v.scalar + `"`
}
