package browser

import (
	"errors"
	"math"
	"testing"
)

func TestLengthToInches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "inches", input: "6in", want: 6},
		{name: "pixels", input: "96px", want: 1},
		{name: "bare number is pixels", input: "192", want: 2},
		{name: "millimeters", input: "25.4mm", want: 1},
		{name: "centimeters", input: "2.54cm", want: 1},
		{name: "points", input: "72pt", want: 1},
		{name: "picas", input: "6pc", want: 1},
		{name: "surrounding space and case", input: "  8.5IN ", want: 8.5},
		{name: "space before unit", input: "4 in", want: 4},
		{name: "zero", input: "0", want: 0},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown unit", input: "3em", wantErr: true},
		{name: "garbage", input: "wide", wantErr: true},
		{name: "negative", input: "-1in", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LengthToInches(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLength) {
					t.Fatalf("LengthToInches(%q) error = %v, want ErrInvalidLength", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LengthToInches(%q) unexpected error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LengthToInches(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPaperSize(t *testing.T) {
	t.Parallel()

	t.Run("unset dimensions are zero", func(t *testing.T) {
		t.Parallel()

		w, h, err := paperSize(PrintOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 0 || h != 0 {
			t.Errorf("got (%v, %v), want (0, 0)", w, h)
		}
	})

	t.Run("width only", func(t *testing.T) {
		t.Parallel()

		w, h, err := paperSize(PrintOptions{Width: "6in"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 6 || h != 0 {
			t.Errorf("got (%v, %v), want (6, 0)", w, h)
		}
	})

	t.Run("invalid height", func(t *testing.T) {
		t.Parallel()

		_, _, err := paperSize(PrintOptions{Width: "6in", Height: "tall"})
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("error = %v, want ErrInvalidLength", err)
		}
	})
}
