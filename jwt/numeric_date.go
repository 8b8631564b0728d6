package jwt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumericDate is a Unix timestamp in seconds kept as its exact decimal text,
// for example "1485949565.58463". The signature covers the serialized bytes,
// so the text is carried through untouched rather than converted to a float.
//
// The zero value means the claim is absent.
type NumericDate string

// NewNumericDate formats t as whole seconds plus up to nine fractional digits,
// with trailing zeros dropped.
func NewNumericDate(t time.Time) NumericDate {
	sec := t.Unix()
	nsec := t.Nanosecond()
	s := strconv.FormatInt(sec, 10)
	if nsec != 0 {
		if sec < 0 {
			// t.Unix() floors, so -1.25s is sec=-2, nsec=750000000.
			sec++
			nsec = 1e9 - nsec
			s = "-" + strconv.FormatInt(-sec, 10)
		}
		frac := strings.TrimRight(fmt.Sprintf("%09d", nsec), "0")
		s += "." + frac
	}
	return NumericDate(s)
}

// IsZero reports whether the claim is absent.
func (d NumericDate) IsZero() bool {
	return d == ""
}

// Valid reports whether d is a well-formed decimal: optional '-', digits,
// optionally followed by '.' and more digits.
func (d NumericDate) Valid() bool {
	s := string(d)
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	if hasFrac && !allDigits(frac) {
		return false
	}
	return true
}

// Time converts d to a time.Time. Fractional digits beyond nanoseconds are
// truncated.
func (d NumericDate) Time() (time.Time, error) {
	if !d.Valid() {
		return time.Time{}, fmt.Errorf("invalid numeric date %q", string(d))
	}
	s := string(d)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid numeric date %q: %w", string(d), err)
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	var nsec int64
	if frac != "" {
		nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid numeric date %q: %w", string(d), err)
		}
	}
	if neg {
		sec, nsec = -sec, -nsec
	}
	return time.Unix(sec, nsec), nil
}

func (d NumericDate) String() string {
	return string(d)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
