package money

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		units int64
		err   error
	}{
		{in: "10.00", units: 1000},
		{in: "50", units: 5000},
		{in: "0.01", units: 1},
		{in: "123.4", units: 12340},
		// more than two fractional digits rounds half away from zero
		{in: "10.005", units: 1001},
		{in: "2.675", units: 268},
		{in: "0.004", err: ErrNotPositive}, // rounds down to 0.00
		{in: "0.00", err: ErrNotPositive},
		{in: "0", err: ErrNotPositive},
		{in: "-5", err: ErrNotPositive},
		{in: "-0.01", err: ErrNotPositive},
		// minor-unit values beyond int64 are rejected, not wrapped
		{in: "92233720368547758.07", units: 9223372036854775807},
		{in: "92233720368547758.08", err: ErrInvalidFormat},
		{in: "92233720368547758.09", err: ErrInvalidFormat},
		{in: "100000000000000000000.00", err: ErrInvalidFormat},
		{in: "abc", err: ErrInvalidFormat},
		{in: "", err: ErrInvalidFormat},
		{in: "1,000", err: ErrInvalidFormat},
		{in: "10.0.0", err: ErrInvalidFormat},
		{in: "$5.00", err: ErrInvalidFormat},
	}

	for _, tc := range cases {
		a, err := Parse(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("Parse(%q) err=%v want %v", tc.in, err, tc.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected err: %v", tc.in, err)
			continue
		}
		if a.MinorUnits() != tc.units {
			t.Errorf("Parse(%q)=%d units, want %d", tc.in, a.MinorUnits(), tc.units)
		}
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		units int64
		want  string
	}{
		{1234, "12.34"},
		{5, "0.05"},
		{0, "0.00"},
		{-1, "-0.01"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := FromMinorUnits(tc.units).String(); got != tc.want {
			t.Errorf("FromMinorUnits(%d).String()=%q want %q", tc.units, got, tc.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := FromMinorUnits(1005)
	b := FromMinorUnits(7)

	if got := a.Add(b).MinorUnits(); got != 1012 {
		t.Fatalf("Add=%d want 1012", got)
	}
	if got := a.Sub(b).MinorUnits(); got != 998 {
		t.Fatalf("Sub=%d want 998", got)
	}
	if got := b.Neg().MinorUnits(); got != -7 {
		t.Fatalf("Neg=%d want -7", got)
	}
	if !b.Sub(b).IsZero() {
		t.Fatal("b-b should be zero")
	}
	if !b.Sub(a).IsNegative() {
		t.Fatal("b-a should be negative")
	}
	if !a.GreaterThan(b) || !b.LessThan(a) || a.Equal(b) {
		t.Fatal("comparison helpers disagree")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(FromMinorUnits(1234))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"12.34"` {
		t.Fatalf("marshal=%s want %q", data, `"12.34"`)
	}

	var a Amount
	if err := json.Unmarshal(data, &a); err != nil {
		t.Fatal(err)
	}
	if a.MinorUnits() != 1234 {
		t.Fatalf("unmarshal=%d want 1234", a.MinorUnits())
	}

	// zero is a valid stored balance even though Parse rejects it
	if err := json.Unmarshal([]byte(`"0.00"`), &a); err != nil {
		t.Fatalf("unmarshal zero: %v", err)
	}
	if !a.IsZero() {
		t.Fatalf("want zero, got %d", a.MinorUnits())
	}

	if err := json.Unmarshal([]byte(`"abc"`), &a); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat, got %v", err)
	}

	// over-range values are rejected on unmarshal too
	if err := json.Unmarshal([]byte(`"100000000000000000000.00"`), &a); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("want ErrInvalidFormat for over-range value, got %v", err)
	}
}
