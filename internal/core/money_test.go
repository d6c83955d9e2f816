package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.05", 5, false},
		{".5", 50, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"3.5", 350, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-1.00", 0, true},
		{"+1.00", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12a.00", 0, true},
	}
	for i, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("case %d (%q): expected error, got %d", i, tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %d (%q): unexpected error %v", i, tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("case %d (%q): got %d want %d", i, tc.in, got, tc.want)
		}
	}
}

func TestParseFloatToCents(t *testing.T) {
	if c, err := ParseFloatToCents(3.5); err != nil || c != 350 {
		t.Fatalf("got %d, %v", c, err)
	}
	if c, err := ParseFloatToCents(2.105); err != nil || c != 211 {
		t.Fatalf("got %d, %v", c, err)
	}
	if _, err := ParseFloatToCents(0); err == nil {
		t.Fatalf("expected error for zero")
	}
	if _, err := ParseFloatToCents(-3); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 1234}).String(); s != "12.34" {
		t.Fatalf("got %q", s)
	}
	if s := (Money{Cents: 5}).String(); s != "0.05" {
		t.Fatalf("got %q", s)
	}
}
