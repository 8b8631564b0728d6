package jwt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AlgRS256 is the only signing algorithm this package produces or accepts.
const AlgRS256 = "RS256"

// TypeJWT is the conventional value of the typ header.
const TypeJWT = "JWT"

// Header is the JOSE header of a token. Only alg, typ and kid are recognized.
type Header struct {
	Algorithm string
	Type      string
	KeyID     string
}

// NewHeader returns the RS256 header used for every signed token.
func NewHeader() Header {
	return Header{Algorithm: AlgRS256, Type: TypeJWT}
}

// WithKeyID returns a copy of h carrying kid.
func (h Header) WithKeyID(kid string) Header {
	h.KeyID = strings.TrimSpace(kid)
	return h
}

// normalized fills a missing alg and upper-cases the algorithm name, so
// "rs256" and "" both become RS256.
func (h Header) normalized() (Header, error) {
	alg := strings.ToUpper(strings.TrimSpace(h.Algorithm))
	if alg == "" {
		alg = AlgRS256
	}
	if alg != AlgRS256 {
		return Header{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, h.Algorithm)
	}
	h.Algorithm = alg
	return h, nil
}

// MarshalJSON writes members in the fixed order alg, typ, kid.
func (h Header) MarshalJSON() ([]byte, error) {
	var w objectWriter
	if err := w.member("alg", h.Algorithm); err != nil {
		return nil, err
	}
	if h.Type != "" {
		if err := w.member("typ", h.Type); err != nil {
			return nil, err
		}
	}
	if h.KeyID != "" {
		if err := w.member("kid", h.KeyID); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// UnmarshalJSON accepts any JSON object; unknown members are ignored.
func (h *Header) UnmarshalJSON(data []byte) error {
	members, err := unmarshalObject(data)
	if err != nil {
		return err
	}
	out := Header{}
	for key, dst := range map[string]*string{"alg": &out.Algorithm, "typ": &out.Type, "kid": &out.KeyID} {
		raw, ok := members[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: header member %q must be a string", ErrUnexpectedShape, key)
		}
	}
	*h = out
	return nil
}
