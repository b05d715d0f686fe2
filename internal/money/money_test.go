package money

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Value
		wantErr error
	}{
		{input: "0", want: 0},
		{input: "5", want: 500},
		{input: "150", want: 15000},
		{input: "12,5", want: 1250},
		{input: "12.50", want: 1250},
		{input: "12.505", want: 1250},  // third digit truncated, not rounded
		{input: "1.234", want: 123},    // "234" -> "23"
		{input: "-3.50", want: -250},   // -3*100 + 50, per the integer-part rule
		{input: "1.2,3", want: 1230},   // split on the last separator
		{input: "", wantErr: ErrInvalidEuros},
		{input: ".50", wantErr: ErrInvalidEuros},
		{input: ",5", wantErr: ErrInvalidEuros},
		{input: "abc", wantErr: ErrInvalidEuros},
		{input: "ab.50", wantErr: ErrInvalidEuros},
		{input: "5.", wantErr: ErrInvalidCents},
		{input: "5,", wantErr: ErrInvalidCents},
		{input: "5.x", wantErr: ErrInvalidCents},
		{input: "5.5x", wantErr: ErrInvalidCents},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("Parse(%q) error is not a *ParseError: %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{1250, "12.50"},
		{-1250, "-12.50"},
		{-5, "-0.05"},
		{100000, "1000.00"},
	}
	for _, tt := range tests {
		if got := tt.value.Format(); got != tt.want {
			t.Errorf("Value(%d).Format() = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatDiff(t *testing.T) {
	if got := Value(1250).FormatDiff(); got != "+12.50" {
		t.Errorf("positive diff = %q, want %q", got, "+12.50")
	}
	if got := Value(-1250).FormatDiff(); got != "-12.50" {
		t.Errorf("negative diff = %q, want %q", got, "-12.50")
	}
	if got := Value(0).FormatDiff(); got != "0.00" {
		t.Errorf("zero diff = %q, want %q", got, "0.00")
	}
}

func TestRoundTrip(t *testing.T) {
	// format(parse(s)) must be stable for accepted inputs.
	for _, s := range []string{"0.00", "0.50", "12.50", "-12.50", "1000.00"} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := v.Format(); got != s {
			t.Errorf("Format(Parse(%q)) = %q", s, got)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a, b := Value(100), Value(30)
	if a.Add(b) != 130 {
		t.Errorf("Add = %d", a.Add(b))
	}
	if a.Sub(b) != 70 {
		t.Errorf("Sub = %d", a.Sub(b))
	}
	if b.Neg() != -30 {
		t.Errorf("Neg = %d", b.Neg())
	}
}
