package headers

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidHeader = errors.New("invalid header")

// Headers maps header names to values. Names are kept exactly as received,
// so lookups are case-sensitive.
type Headers map[string]string

func NewHeaders() Headers {
	return map[string]string{}
}

// ParseLine adds a single header line, without its line terminator.
func (h Headers) ParseLine(line []byte) error {
	name, value, err := parseLine(line)
	if err != nil {
		return err
	}
	h.add(name, value)
	return nil
}

func parseLine(line []byte) (string, string, error) {
	colonIdx := bytes.IndexByte(line, ':')
	if colonIdx == -1 {
		return "", "", fmt.Errorf("%w: no colon found in %q", ErrInvalidHeader, line)
	}

	if colonIdx == 0 || line[colonIdx-1] == ' ' {
		return "", "", fmt.Errorf("%w: bad name in %q", ErrInvalidHeader, line)
	}

	key := bytes.TrimSpace(line[:colonIdx])
	for _, b := range key {
		isLetter := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
		isDigit := (b >= '0' && b <= '9')
		isSpecial := bytes.IndexByte([]byte("!#$%&'*+-.^_`|~"), b) != -1

		if !isLetter && !isDigit && !isSpecial {
			return "", "", fmt.Errorf("%w: invalid character %q in name", ErrInvalidHeader, b)
		}
	}

	return string(key), string(bytes.TrimSpace(line[colonIdx+1:])), nil
}

func (h Headers) add(key, value string) {
	if old, ok := h[key]; ok {
		h[key] = old + ", " + value
		return
	}
	h[key] = value
}

// Get returns the value stored under key and whether it was present.
func (h Headers) Get(key string) (string, bool) {
	value, ok := h[key]
	return value, ok
}

// Set adds or overwrites a header.
func (h Headers) Set(key, value string) {
	h[key] = value
}

// Keys returns the header names in sorted order, for stable output.
func (h Headers) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
