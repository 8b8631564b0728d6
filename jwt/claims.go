package jwt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ClaimName identifies a registered claim.
type ClaimName string

const (
	ClaimSubjectName ClaimName = "name"
	ClaimIssuer      ClaimName = "iss"
	ClaimAudience    ClaimName = "aud"
	ClaimIssuedAt    ClaimName = "iat"
	ClaimExpiresAt   ClaimName = "exp"
	ClaimNotBefore   ClaimName = "nbf"
)

// RegisteredClaims lists the recognized claims in serialization order.
var RegisteredClaims = []ClaimName{
	ClaimSubjectName,
	ClaimIssuer,
	ClaimAudience,
	ClaimIssuedAt,
	ClaimExpiresAt,
	ClaimNotBefore,
}

// ClaimKind is the value shape of a registered claim.
type ClaimKind uint8

const (
	KindString ClaimKind = iota + 1
	KindNumericDate
	KindStringList
)

func (k ClaimKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumericDate:
		return "numeric-date"
	case KindStringList:
		return "string-list"
	default:
		return "unknown"
	}
}

// Kind returns the value shape of n, or false when n is not registered.
func (n ClaimName) Kind() (ClaimKind, bool) {
	switch n {
	case ClaimSubjectName, ClaimIssuer:
		return KindString, true
	case ClaimAudience:
		return KindStringList, true
	case ClaimIssuedAt, ClaimExpiresAt, ClaimNotBefore:
		return KindNumericDate, true
	default:
		return 0, false
	}
}

// ClaimValue is a tagged value of one registered claim.
type ClaimValue struct {
	kind ClaimKind
	text string
	list []string
}

// StringValue returns a string claim value.
func StringValue(s string) ClaimValue {
	return ClaimValue{kind: KindString, text: s}
}

// DateValue returns a numeric-date claim value.
func DateValue(d NumericDate) ClaimValue {
	return ClaimValue{kind: KindNumericDate, text: string(d)}
}

// ListValue returns a string-list claim value.
func ListValue(items ...string) ClaimValue {
	return ClaimValue{kind: KindStringList, list: slices.Clone(items)}
}

func (v ClaimValue) Kind() ClaimKind { return v.kind }

// Text returns the string or numeric-date text; empty for lists.
func (v ClaimValue) Text() string { return v.text }

// List returns a copy of the string-list items; nil for scalar kinds.
func (v ClaimValue) List() []string { return slices.Clone(v.list) }

func (v ClaimValue) String() string {
	if v.kind == KindStringList {
		return "[" + strings.Join(v.list, ", ") + "]"
	}
	return v.text
}

// Claims is the payload of a token.
//
// Empty fields are omitted when serialized. Extra holds members that are not
// registered claims; it is only populated when decoding tokens produced
// elsewhere and is written back after the registered claims in key order.
type Claims struct {
	Name      string
	Issuer    string
	Audience  []string
	IssuedAt  NumericDate
	ExpiresAt NumericDate
	NotBefore NumericDate

	Extra map[string]json.RawMessage
}

// Value returns the tagged value of a registered claim and whether it is set.
func (c Claims) Value(name ClaimName) (ClaimValue, bool) {
	switch name {
	case ClaimSubjectName:
		return StringValue(c.Name), c.Name != ""
	case ClaimIssuer:
		return StringValue(c.Issuer), c.Issuer != ""
	case ClaimAudience:
		return ListValue(c.Audience...), len(c.Audience) > 0
	case ClaimIssuedAt:
		return DateValue(c.IssuedAt), !c.IssuedAt.IsZero()
	case ClaimExpiresAt:
		return DateValue(c.ExpiresAt), !c.ExpiresAt.IsZero()
	case ClaimNotBefore:
		return DateValue(c.NotBefore), !c.NotBefore.IsZero()
	default:
		return ClaimValue{}, false
	}
}

// Set assigns a registered claim. The value kind must match [ClaimName.Kind].
func (c *Claims) Set(name ClaimName, v ClaimValue) error {
	want, ok := name.Kind()
	if !ok {
		return fmt.Errorf("%w: %q is not a registered claim", ErrSerializationFailure, name)
	}
	if v.kind != want {
		return fmt.Errorf("%w: claim %q expects %s, got %s", ErrSerializationFailure, name, want, v.kind)
	}
	switch name {
	case ClaimSubjectName:
		c.Name = v.text
	case ClaimIssuer:
		c.Issuer = v.text
	case ClaimAudience:
		c.Audience = slices.Clone(v.list)
	case ClaimIssuedAt:
		c.IssuedAt = NumericDate(v.text)
	case ClaimExpiresAt:
		c.ExpiresAt = NumericDate(v.text)
	case ClaimNotBefore:
		c.NotBefore = NumericDate(v.text)
	}
	return nil
}

// Equal reports whether c and o carry the same claims. A nil and an empty
// audience or extra set compare equal.
func (c Claims) Equal(o Claims) bool {
	if c.Name != o.Name || c.Issuer != o.Issuer ||
		c.IssuedAt != o.IssuedAt || c.ExpiresAt != o.ExpiresAt || c.NotBefore != o.NotBefore {
		return false
	}
	if !slices.Equal(c.Audience, o.Audience) {
		return false
	}
	if len(c.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range c.Extra {
		ov, ok := o.Extra[k]
		if !ok || !bytes.Equal(compactJSON(v), compactJSON(ov)) {
			return false
		}
	}
	return true
}

// String renders the claims one per line in serialization order, for
// diagnostics.
func (c Claims) String() string {
	var b strings.Builder
	for _, name := range RegisteredClaims {
		v, ok := c.Value(name)
		if !ok {
			continue
		}
		b.WriteString(string(name))
		b.WriteString(": ")
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	for _, k := range sortedKeys(c.Extra) {
		b.WriteString(k)
		b.WriteString(": ")
		b.Write(compactJSON(c.Extra[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalJSON writes the registered claims in [RegisteredClaims] order and then
// Extra in key order. Numeric dates are written as JSON strings.
func (c Claims) MarshalJSON() ([]byte, error) {
	var w objectWriter
	if c.Name != "" {
		if err := w.member(string(ClaimSubjectName), c.Name); err != nil {
			return nil, err
		}
	}
	if c.Issuer != "" {
		if err := w.member(string(ClaimIssuer), c.Issuer); err != nil {
			return nil, err
		}
	}
	if len(c.Audience) > 0 {
		if err := w.member(string(ClaimAudience), c.Audience); err != nil {
			return nil, err
		}
	}
	dates := []struct {
		name ClaimName
		val  NumericDate
	}{
		{ClaimIssuedAt, c.IssuedAt},
		{ClaimExpiresAt, c.ExpiresAt},
		{ClaimNotBefore, c.NotBefore},
	}
	for _, d := range dates {
		if d.val.IsZero() {
			continue
		}
		if !d.val.Valid() {
			return nil, fmt.Errorf("%w: claim %q is not a decimal timestamp: %q", ErrSerializationFailure, d.name, d.val)
		}
		if err := w.member(string(d.name), string(d.val)); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(c.Extra) {
		if _, registered := ClaimName(k).Kind(); registered {
			return nil, fmt.Errorf("%w: extra claim %q shadows a registered claim", ErrSerializationFailure, k)
		}
		if err := w.raw(k, c.Extra[k]); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON decodes a claims object. Numeric dates may be JSON strings or
// JSON numbers; in both cases the decimal text is preserved. aud may be a
// single string or an array of strings.
func (c *Claims) UnmarshalJSON(data []byte) error {
	members, err := unmarshalObject(data)
	if err != nil {
		return err
	}

	out := Claims{}
	for key, raw := range members {
		name := ClaimName(key)
		kind, registered := name.Kind()
		if !registered {
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = slices.Clone(raw)
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}

		var v ClaimValue
		switch kind {
		case KindString:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("%w: claim %q must be a string", ErrUnexpectedShape, key)
			}
			v = StringValue(s)
		case KindStringList:
			list, err := decodeAudience(raw)
			if err != nil {
				return fmt.Errorf("%w: claim %q: %v", ErrUnexpectedShape, key, err)
			}
			v = ListValue(list...)
		case KindNumericDate:
			d, err := decodeNumericDate(raw)
			if err != nil {
				return fmt.Errorf("%w: claim %q: %v", ErrUnexpectedShape, key, err)
			}
			v = DateValue(d)
		}
		if err := out.Set(name, v); err != nil {
			return err
		}
	}

	*c = out
	return nil
}

func decodeAudience(raw json.RawMessage) ([]string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("must be a string or an array of strings")
	}
	return list, nil
}

func decodeNumericDate(raw json.RawMessage) (NumericDate, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		d := NumericDate(text)
		if !d.Valid() {
			return "", fmt.Errorf("not a decimal timestamp: %q", text)
		}
		return d, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return "", fmt.Errorf("must be a number or a decimal string")
	}
	d := NumericDate(num.String())
	if !d.Valid() {
		// Exponent forms such as 1e9 are rejected rather than rewritten.
		return "", fmt.Errorf("not a plain decimal timestamp: %s", num)
	}
	return d, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func compactJSON(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
