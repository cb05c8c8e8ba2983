package validate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultMaxInputBytes bounds instructions read by Read.
const DefaultMaxInputBytes = 1 << 20

var (
	// ErrNotText marks input that is not valid UTF-8 or contains a NUL byte.
	ErrNotText = errors.New("input is not decodable as text")
	// ErrInputTooLarge marks input over the configured byte limit.
	ErrInputTooLarge = errors.New("input exceeds size limit")
)

// Decode converts raw bytes to instruction text. A leading UTF-8 byte
// order mark is dropped.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return "", fmt.Errorf("%w: NUL byte at offset %d", ErrNotText, i)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrNotText)
	}
	return string(data), nil
}

// Read reads at most maxBytes from r and decodes it. maxBytes <= 0
// selects DefaultMaxInputBytes.
func Read(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, maxBytes)
	}
	return Decode(data)
}
