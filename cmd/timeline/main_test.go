package main

import (
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRunes(t *testing.T) {
	got := truncate("Grüße aus München, schöne Grüße", 10)
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8, got %q", got)
	}
	if got != "Grüße a..." {
		t.Fatalf("expected %q, got %q", "Grüße a...", got)
	}
	if got := truncate("a\nb", 10); got != "a b" {
		t.Fatalf("expected newlines flattened, got %q", got)
	}
}
