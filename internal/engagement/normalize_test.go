package engagement

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "just a note", "just a note"},
		{
			"salutation and signature",
			"Vaughn,\nhello world\n\nRespectfully,\n\nDallas",
			"hello world\n",
		},
		{
			"salutation with blank lines",
			"Vaughn,\n\n\nhow was the week?",
			"how was the week?",
		},
		{
			"boilerplate mid message",
			"first\nVaughn,\nsecond",
			"first\nsecond",
		},
		{
			"quote marker at start",
			"x> quoted stuff\nmy real reply",
			"uoted stuff\nmy real reply",
		},
		{
			"several quote markers",
			"a> one\nb> two",
			"ne\ntwo",
		},
		{
			"dash before arrow is not a quote",
			"--> not a quote",
			"--> not a quote",
		},
		{
			"quote marker not at start",
			"I said\nx> this",
			"I said\nx> this",
		},
		{
			"marker only",
			"x> ",
			"",
		},
		{
			"blank runs collapse",
			"one\n\n\n\ntwo\n\nthree",
			"one\ntwo\nthree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_IdempotentOnCleanText(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"one line\nanother line",
		"is this a question?\nyes",
		"trailing newline\n",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
