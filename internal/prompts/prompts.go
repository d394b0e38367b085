// Package prompts serves the example prompts shown to users before they have
// typed anything. The catalog is static; entries are keyed by generation mode.
package prompts

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Example is a ready-to-use prompt with display keywords.
type Example struct {
	Mode     string   `json:"mode"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// Suggester provides example prompts for a generation mode.
type Suggester interface {
	Examples(mode string) []Example
}

// StaticSuggester serves the built-in example catalog.
type StaticSuggester struct{}

func NewStaticSuggester() *StaticSuggester {
	return &StaticSuggester{}
}

var examples = []Example{
	{Mode: "composite", Text: "place the watch on the wrist", Keywords: []string{"watch", "product placement"}},
	{Mode: "composite", Text: "add a gold watch with a blue dial", Keywords: []string{"jewelry", "studio"}},
	{Mode: "composite", Text: "have the model hold the handbag in her right hand", Keywords: []string{"handbag", "lifestyle"}},
	{Mode: "text", Text: "A high-resolution photo of a robot holding a red skateboard", Keywords: []string{"robot", "skateboard"}},
	{Mode: "text", Text: "A minimalist product shot of a ceramic mug on a marble counter", Keywords: []string{"ceramic mug", "minimalist"}},
}

// Examples returns the examples for the given mode with title-cased display
// keywords. An unknown mode returns the full catalog.
func (s *StaticSuggester) Examples(mode string) []Example {
	titler := cases.Title(language.English)
	var out []Example
	for _, example := range examples {
		if mode != "" && example.Mode != mode {
			continue
		}
		keywords := make([]string, len(example.Keywords))
		for i, keyword := range example.Keywords {
			keywords[i] = titler.String(keyword)
		}
		out = append(out, Example{Mode: example.Mode, Text: example.Text, Keywords: keywords})
	}
	if len(out) == 0 {
		return s.Examples("")
	}
	return out
}
