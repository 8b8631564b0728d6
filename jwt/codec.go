package jwt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// segmentEncoding is unpadded base64url. Strict mode rejects non-zero
// trailing bits so every segment has exactly one valid spelling.
var segmentEncoding = base64.RawURLEncoding.Strict()

// EncodeSegment encodes b as an unpadded base64url token segment.
func EncodeSegment(b []byte) string {
	return segmentEncoding.EncodeToString(b)
}

// DecodeSegment reverses [EncodeSegment].
//
// It fails with [ErrMalformedSegment] when seg contains characters outside the
// URL-safe alphabet (including '=' padding) or does not decode to a whole
// byte sequence.
func DecodeSegment(seg string) ([]byte, error) {
	for i := 0; i < len(seg); i++ {
		if !isSegmentByte(seg[i]) {
			return nil, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedSegment, seg[i], i)
		}
	}
	out, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSegment, err)
	}
	return out, nil
}

func isSegmentByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_'
}

// unmarshalObject decodes data into a map of raw members. The top-level value
// must be a JSON object.
func unmarshalObject(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, ErrMalformedJSON
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrUnexpectedShape)
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return members, nil
}

// objectWriter builds a JSON object with members in insertion order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
}

// member rejects text that is not valid UTF-8; encoding/json would replace
// it with U+FFFD and the decoded value would no longer match.
func (w *objectWriter) member(key string, value any) error {
	switch v := value.(type) {
	case string:
		if !utf8.ValidString(v) {
			return fmt.Errorf("%w: member %q is not valid utf-8", ErrSerializationFailure, key)
		}
	case []string:
		for i, item := range v {
			if !utf8.ValidString(item) {
				return fmt.Errorf("%w: member %q item %d is not valid utf-8", ErrSerializationFailure, key, i)
			}
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: member %q: %v", ErrSerializationFailure, key, err)
	}
	return w.raw(key, raw)
}

func (w *objectWriter) raw(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("%w: member %q is not valid json", ErrSerializationFailure, key)
	}
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("%w: member name %q: %v", ErrSerializationFailure, key, err)
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	if err := json.Compact(&w.buf, value); err != nil {
		return fmt.Errorf("%w: member %q: %v", ErrSerializationFailure, key, err)
	}
	w.n++
	return nil
}

func (w *objectWriter) bytes() []byte {
	if w.n == 0 {
		return []byte("{}")
	}
	out := make([]byte, 0, w.buf.Len()+1)
	out = append(out, w.buf.Bytes()...)
	return append(out, '}')
}
