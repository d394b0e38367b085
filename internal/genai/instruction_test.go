package genai

import (
	"strings"
	"testing"
)

func TestCompositeInstructionWithProduct(t *testing.T) {
	got := CompositeInstruction("place the watch on the wrist", true)

	for _, expect := range []string{
		"Image 1 is the model/background",
		"Image 2 is the product",
		"place the watch on the wrist",
		"lighting, shadows, and perspective",
	} {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q: %s", expect, got)
		}
	}
}

func TestCompositeInstructionWithoutProduct(t *testing.T) {
	got := CompositeInstruction("add a sunset sky", false)

	if strings.Contains(got, "Image 2") {
		t.Fatalf("single-image variant must not reference a product image: %s", got)
	}
	for _, expect := range []string{"edit this background image", "add a sunset sky", "photorealistic"} {
		if !strings.Contains(got, expect) {
			t.Fatalf("instruction missing %q: %s", expect, got)
		}
	}
}
