package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Go  1.21 released!  ", "go-1-21-released"},
		{"Что нового", ""},
		{"---", ""},
		{"CamelCase", "camelcase"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	got := UniqueSlug("taken")
	if !strings.HasPrefix(got, "taken-") || len(got) <= len("taken-") {
		t.Errorf("Expected suffixed slug, got %q", got)
	}
	if UniqueSlug("") == "" {
		t.Errorf("Expected non-empty slug for empty input")
	}
}

func TestUniqueUint(t *testing.T) {
	got := UniqueUint([]uint{3, 1, 3, 2, 1})
	want := []uint{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestSanitizeStripsScripts(t *testing.T) {
	got := Sanitize(`hi <b>there</b> <script>alert("x")</script>`)
	if strings.Contains(got, "script") {
		t.Errorf("Expected script removed, got %q", got)
	}
	if !strings.Contains(got, "<b>there</b>") {
		t.Errorf("Expected basic formatting kept, got %q", got)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Errorf("Expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Errorf("Expected wrong password to fail")
	}
}
