package jwt

import (
	"testing"
	"time"
)

func TestNewNumericDate(t *testing.T) {
	cases := []struct {
		in   time.Time
		want NumericDate
	}{
		{time.Unix(1485949565, 0), "1485949565"},
		{time.Unix(1485949565, 584630000), "1485949565.58463"},
		{time.Unix(0, 1), "0.000000001"},
		{time.Unix(-2, 750000000), "-1.25"},
	}
	for _, tc := range cases {
		if got := NewNumericDate(tc.in); got != tc.want {
			t.Fatalf("NewNumericDate(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNumericDateTime(t *testing.T) {
	got, err := NumericDate("1485949565.58463").Time()
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if !got.Equal(time.Unix(1485949565, 584630000)) {
		t.Fatalf("time = %v", got)
	}

	neg, err := NumericDate("-1.25").Time()
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if !neg.Equal(time.Unix(-2, 750000000)) {
		t.Fatalf("negative time = %v", neg)
	}

	for _, bad := range []NumericDate{"", "1.", ".5", "1e9", "abc", "--1", "1.2.3"} {
		if bad.Valid() {
			t.Fatalf("%q should be invalid", bad)
		}
		if _, err := bad.Time(); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
