// Package frontmatter splits a post source into its YAML metadata block and
// Markdown body, and converts the metadata into tagged Values.
package frontmatter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theacodes/blog.thea.codes/internal/dateutil"
	"github.com/theacodes/blog.thea.codes/internal/yamlutil"
)

// ErrMalformedFrontmatter indicates a metadata block that is unterminated or
// is not a YAML mapping of supported values.
var ErrMalformedFrontmatter = errors.New("malformed frontmatter")

const delimiter = "---"

// Normalize strips a UTF-8 byte order mark and converts CRLF and CR line
// endings to LF.
func Normalize(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	if !strings.Contains(content, "\r") {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// Split separates the metadata block from the body.
//
// A block opens only when the first line is "---" and closes at the next
// line that is "---" or "...". Without an opening line, had is false and
// body is the whole content. Content is normalized first.
func Split(content string) (front, body string, had bool, err error) {
	content = Normalize(content)

	first, rest, found := strings.Cut(content, "\n")
	if strings.TrimRight(first, " \t") != delimiter {
		return "", content, false, nil
	}
	if !found {
		return "", "", false, fmt.Errorf("%w: closing delimiter missing", ErrMalformedFrontmatter)
	}

	offset := 0
	for offset <= len(rest) {
		line, _, more := strings.Cut(rest[offset:], "\n")
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == delimiter || trimmed == "..." {
			front = rest[:offset]
			bodyStart := offset + len(line) + 1
			if bodyStart > len(rest) {
				bodyStart = len(rest)
			}
			return front, rest[bodyStart:], true, nil
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}

	return "", "", false, fmt.Errorf("%w: closing delimiter missing", ErrMalformedFrontmatter)
}

// Parse splits content and decodes the metadata block.
func Parse(content string) (*Metadata, string, error) {
	front, body, had, err := Split(content)
	if err != nil {
		return nil, "", err
	}

	meta := NewMetadata()
	if !had || strings.TrimSpace(front) == "" {
		return meta, body, nil
	}

	items, err := yamlutil.UnmarshalOrdered([]byte(front))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
	}

	for _, it := range items {
		v, err := toValue(it.Value)
		if err != nil {
			return nil, "", fmt.Errorf("%w: key %q: %v", ErrMalformedFrontmatter, it.Key, err)
		}
		meta.Set(it.Key, v)
	}
	return meta, body, nil
}

// toValue applies the conversion policy from decoded YAML to Value.
func toValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return StringValue(""), nil
	case bool:
		return BoolValue(x), nil
	case time.Time:
		return DateValue(x), nil
	case string:
		if dateutil.LooksLikeDate(x) {
			t, _ := dateutil.ParseDate(x)
			return DateValue(t), nil
		}
		return StringValue(x), nil
	case []any:
		items := make([]string, 0, len(x))
		for i, el := range x {
			s, err := scalarText(el)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return ListValue(items), nil
	case []yamlutil.Item:
		return Value{}, errors.New("nested mappings are not supported")
	default:
		s, err := scalarText(x)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	}
}

// scalarText renders a scalar as text for string and list values.
func scalarText(raw any) (string, error) {
	switch x := raw.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.Format(time.DateOnly), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", raw)
	}
}
