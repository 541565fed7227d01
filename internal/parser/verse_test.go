package parser

import (
	"strings"
	"testing"
)

func TestFormatVerseLine(t *testing.T) {
	wrap := func(s string) string { return NowrapOpen + s + NowrapClose }

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single danda splits half-lines",
			in:   "pahelu । bījuṁ",
			want: "pahelu\nbījuṁ",
		},
		{
			name: "single bar splits half-lines",
			in:   "pahelu | bījuṁ",
			want: "pahelu\nbījuṁ",
		},
		{
			name: "double danda verse end kept and wrapped",
			in:   "pahelu । bījuṁ ॥ 8 ॥",
			want: "pahelu\nbījuṁ " + wrap("॥ 8 ॥"),
		},
		{
			name: "doubled bar verse end kept and wrapped",
			in:   "pahelu | bījuṁ || 8 ||",
			want: "pahelu\nbījuṁ " + wrap("|| 8 ||"),
		},
		{
			name: "doubled danda pair",
			in:   "ardhu ।। 12-13 ।।",
			want: "ardhu " + wrap("।। 12-13 ।।"),
		},
		{
			name: "gujarati digits",
			in:   "ardhu ॥ ૮ ॥",
			want: "ardhu " + wrap("॥ ૮ ॥"),
		},
		{
			name: "escaped bar stays literal",
			in:   `a \| b`,
			want: "a | b",
		},
		{
			name: "doubled bar without number stays inline",
			in:   "a || b",
			want: "a || b",
		},
		{
			name: "trailing single bar dropped",
			in:   "a |",
			want: "a",
		},
		{
			name: "no marks",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatVerseLine(tc.in)
			if got != tc.want {
				t.Errorf("FormatVerseLine(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatVerseLine_MarkerNeverSplit(t *testing.T) {
	tests := []struct {
		in      string
		markers []string
	}{
		{"a | b ॥ 8 ॥ c | d ॥ 9 ॥", []string{"॥ 8 ॥", "॥ 9 ॥"}},
		{"a । b || 10 || c । d || 11 ||", []string{"|| 10 ||", "|| 11 ||"}},
		{"a|b||12||", []string{"||12||"}},
	}

	for _, tc := range tests {
		out := FormatVerseLine(tc.in)
		for _, m := range tc.markers {
			found := false
			for _, line := range strings.Split(out, "\n") {
				if strings.Contains(line, m) {
					found = true
				}
			}
			if !found {
				t.Errorf("marker %q split or lost in %q", m, out)
			}
		}
	}

	if got := FormatVerseLine("a|b||12||"); got != "a\nb"+NowrapOpen+"||12||"+NowrapClose {
		t.Errorf("unexpected output %q", got)
	}
}
