package prompts

import "testing"

func TestExamplesFiltersByMode(t *testing.T) {
	s := NewStaticSuggester()

	for _, example := range s.Examples("text") {
		if example.Mode != "text" {
			t.Fatalf("unexpected mode %q", example.Mode)
		}
	}
	if len(s.Examples("composite")) == 0 {
		t.Fatal("composite examples missing")
	}
}

func TestExamplesTitleCasesKeywords(t *testing.T) {
	s := NewStaticSuggester()
	examples := s.Examples("text")
	if len(examples) == 0 {
		t.Fatal("no text examples")
	}
	found := false
	for _, example := range examples {
		for _, keyword := range example.Keywords {
			if keyword == "Robot" {
				found = true
			}
			if keyword != "" && keyword[0] >= 'a' && keyword[0] <= 'z' {
				t.Fatalf("keyword %q not title-cased", keyword)
			}
		}
	}
	if !found {
		t.Fatal("expected the Robot keyword in text examples")
	}
}

func TestExamplesUnknownModeReturnsAll(t *testing.T) {
	s := NewStaticSuggester()
	if got, want := len(s.Examples("video")), len(s.Examples("")); got != want {
		t.Fatalf("unknown mode returned %d examples, want %d", got, want)
	}
}
