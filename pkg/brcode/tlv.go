package brcode

import (
	"errors"
	"fmt"
	"strconv"
)

const maxValueLength = 99

var (
	ErrInvalidTag     = errors.New("brcode: tag must be two digits")
	ErrValueTooLong   = errors.New("brcode: value exceeds 99 characters")
	ErrMalformedField = errors.New("brcode: malformed tlv sequence")
)

// TLV is one decoded tag-length-value field.
type TLV struct {
	Tag   string
	Value string
}

// Field encodes value under tag as tag + two-digit length + value.
// Values longer than 99 bytes are rejected; callers own truncation policy.
func Field(tag, value string) (string, error) {
	if !isTag(tag) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if len(value) > maxValueLength {
		return "", fmt.Errorf("%w: tag %s has %d", ErrValueTooLong, tag, len(value))
	}
	return fmt.Sprintf("%s%02d%s", tag, len(value), value), nil
}

// Decode splits a flat TLV sequence into its fields. Nested templates are
// returned as opaque values and can be decoded again.
func Decode(s string) ([]TLV, error) {
	var out []TLV
	for i := 0; i < len(s); {
		if len(s)-i < 4 {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformedField, i)
		}
		tag := s[i : i+2]
		if !isTag(tag) {
			return nil, fmt.Errorf("%w: bad tag %q at offset %d", ErrMalformedField, tag, i)
		}
		n, err := strconv.Atoi(s[i+2 : i+4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad length %q at offset %d", ErrMalformedField, s[i+2:i+4], i)
		}
		start := i + 4
		if start+n > len(s) {
			return nil, fmt.Errorf("%w: tag %s overruns input", ErrMalformedField, tag)
		}
		out = append(out, TLV{Tag: tag, Value: s[start : start+n]})
		i = start + n
	}
	return out, nil
}

// Lookup returns the value of the first field with tag.
func Lookup(fields []TLV, tag string) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

func isTag(tag string) bool {
	return len(tag) == 2 && isDigit(tag[0]) && isDigit(tag[1])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
