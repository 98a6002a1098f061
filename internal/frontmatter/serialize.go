package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// plainKey matches keys that can be written without quoting.
var plainKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Serialize writes m as a YAML mapping (without delimiters) in key order.
//
// Strings are always double-quoted so they never re-parse as another kind;
// dates are written bare so they re-parse as dates. Parse(Serialize(m))
// reproduces any m that Parse produced.
func Serialize(m *Metadata) ([]byte, error) {
	var b strings.Builder
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		b.WriteString(yamlKey(k))
		b.WriteString(": ")
		switch v.Kind() {
		case KindString:
			b.WriteString(strconv.Quote(v.str))
		case KindBool:
			b.WriteString(strconv.FormatBool(v.b))
		case KindDate:
			b.WriteString(v.date.Format(time.DateOnly))
		case KindList:
			b.WriteByte('[')
			for i, item := range v.list {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(strconv.Quote(item))
			}
			b.WriteByte(']')
		default:
			return nil, fmt.Errorf("key %q: unknown kind %v", k, v.Kind())
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// Join reassembles a source document from metadata and body. Empty metadata
// produces the body alone.
func Join(m *Metadata, body string) ([]byte, error) {
	if m.Len() == 0 {
		return []byte(body), nil
	}
	front, err := Serialize(m)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.Write(front)
	b.WriteString(delimiter + "\n")
	b.WriteString(body)
	return []byte(b.String()), nil
}

func yamlKey(k string) string {
	if plainKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}
