package domain

import "testing"

func TestAnswerMatches(t *testing.T) {
	cases := []struct {
		got, want string
		match     bool
	}{
		{"library", "library", true},
		{"LIBRARY", "library", true},
		{"  Library  ", "library", true},
		{"library", "  LIBRARY", true},
		{"librarian", "library", false},
		{"", "library", false},
		{"   ", "library", false},
		{"", "", true},
	}
	for _, c := range cases {
		if AnswerMatches(c.got, c.want) != c.match {
			t.Errorf("AnswerMatches(%q, %q) = %v, want %v", c.got, c.want, !c.match, c.match)
		}
	}
}
