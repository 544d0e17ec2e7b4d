package importer

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string // "" means nil expected
	}{
		{"15/08/2023", "2023-08-15"},
		{"5/8/2023", "2023-08-05"},
		{"15-08-2023", "2023-08-15"},
		{"5-8-23", "2023-08-05"},
		{"15/08/23", "2023-08-15"},
		{"", ""},
		{"   ", ""},
		{"2023-08-15", ""}, // ISO not used in the exports
		{"not a date", ""},
		{"32/01/2023", ""},
	}

	for _, tc := range cases {
		got := ParseDate(tc.in)
		if tc.want == "" {
			if got != nil {
				t.Errorf("ParseDate(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseDate(%q) = nil, want %s", tc.in, tc.want)
			continue
		}
		if got.Format(time.DateOnly) != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format(time.DateOnly), tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"53,394.30", f(53394.30)},
		{"1200", f(1200)},
		{"  450.75  ", f(450.75)},
		{`"2,500"`, f(2500)},
		{"1500*", f(1500)},
		{"300#", f(300)},
		{"12500 (SIR)", f(12500)},
		{"9800 DEPOSITE", f(9800)},
		{"2100 API", f(2100)},
		{"", nil},
		{"....", nil},
		{"N/A", nil},
		{"pending", nil},
		{"(rejected)", nil},
	}

	for _, tc := range cases {
		got := ParseAmount(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("ParseAmount(%q) = %v, want nil", tc.in, *got)
		case tc.want != nil && got == nil:
			t.Errorf("ParseAmount(%q) = nil, want %v", tc.in, *tc.want)
		case tc.want != nil && *got != *tc.want:
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, *got, *tc.want)
		}
	}
}

func f(v float64) *float64 { return &v }
