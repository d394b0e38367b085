package catalog

import (
	"strings"
	"testing"
)

func TestStyleByID(t *testing.T) {
	style, ok := StyleByID("ecommerce")
	if !ok {
		t.Fatal("ecommerce preset missing")
	}
	if !strings.Contains(style.PromptSuffix, "white background") {
		t.Fatalf("unexpected suffix: %s", style.PromptSuffix)
	}

	if _, ok := StyleByID("vaporwave"); ok {
		t.Fatal("unknown preset must not resolve")
	}
}

func TestDefaultStyle(t *testing.T) {
	if got := DefaultStyle().ID; got != "studio" {
		t.Fatalf("default style = %q, want studio", got)
	}
}

func TestAspectRatios(t *testing.T) {
	for _, ratio := range []string{"1:1", "16:9", "9:16", "4:3", "3:4"} {
		if !ValidAspectRatio(ratio) {
			t.Fatalf("ratio %q must be valid", ratio)
		}
	}
	if ValidAspectRatio("21:9") {
		t.Fatal("21:9 is not in the supported set")
	}
	if DefaultAspectRatio != "1:1" {
		t.Fatalf("default ratio = %q", DefaultAspectRatio)
	}
}

func TestCatalogsAreCopies(t *testing.T) {
	presets := StylePresets()
	presets[0].ID = "mutated"
	if got := DefaultStyle().ID; got != "studio" {
		t.Fatalf("catalog mutated through returned slice: %q", got)
	}

	models := StockModels()
	if len(models) == 0 {
		t.Fatal("stock model catalog is empty")
	}
	models[0] = "mutated"
	if StockModels()[0] == "mutated" {
		t.Fatal("stock catalog mutated through returned slice")
	}
}
