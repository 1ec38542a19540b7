package sanitize_test

import (
	"testing"

	"github.com/campusboard/taskboard/internal/sanitize"
)

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sprint planning", "Sprint planning"},
		{"  padded  ", "padded"},
		{"<script>alert('x')</script>", ""},
		{"<b>bold</b> name", "bold name"},
		{"a < b", "a &lt; b"},
		{"", ""},
	}
	for _, c := range cases {
		if got := sanitize.Text(c.in); got != c.want {
			t.Errorf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
