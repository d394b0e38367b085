// Package catalog holds the fixed style, aspect-ratio and stock-model
// catalogs offered to users. Entries are immutable and selected by id.
package catalog

// StylePreset is a fixed catalog entry whose suffix is appended verbatim to
// the user prompt before generation.
type StylePreset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PromptSuffix string `json:"prompt_suffix"`
}

var stylePresets = []StylePreset{
	{
		ID:           "studio",
		Name:         "Professional Studio",
		PromptSuffix: "in a professional, clean, well-lit studio environment with a minimalist background",
	},
	{
		ID:           "outdoor",
		Name:         "Outdoor Lifestyle",
		PromptSuffix: "in a vibrant outdoor lifestyle setting with natural lighting, like a sunny park or a chic urban street",
	},
	{
		ID:           "social",
		Name:         "Social Media",
		PromptSuffix: "with a trendy, eye-catching aesthetic suitable for social media like Instagram, using vibrant colors and a dynamic composition",
	},
	{
		ID:           "ecommerce",
		Name:         "E-commerce",
		PromptSuffix: "against a plain, solid white background, with perfect lighting to highlight product details, in the style of an Amazon or Shopify product listing",
	},
}

// StylePresets returns the full preset catalog in display order.
func StylePresets() []StylePreset {
	out := make([]StylePreset, len(stylePresets))
	copy(out, stylePresets)
	return out
}

// StyleByID resolves a preset by its identifier.
func StyleByID(id string) (StylePreset, bool) {
	for _, preset := range stylePresets {
		if preset.ID == id {
			return preset, true
		}
	}
	return StylePreset{}, false
}

// DefaultStyle is the preset applied when the caller does not pick one.
func DefaultStyle() StylePreset {
	return stylePresets[0]
}

// DefaultAspectRatio is used by text-to-image requests that omit a ratio.
const DefaultAspectRatio = "1:1"

var aspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// AspectRatios returns the supported text-to-image aspect ratios.
func AspectRatios() []string {
	out := make([]string, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// ValidAspectRatio reports whether the given ratio is in the supported set.
func ValidAspectRatio(ratio string) bool {
	for _, r := range aspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

var stockModels = []string{
	"https://picsum.photos/id/1005/600/800",
	"https://picsum.photos/id/1011/600/800",
	"https://picsum.photos/id/1027/600/800",
}

// StockModels returns the built-in model photo URLs users can pick instead of
// uploading their own.
func StockModels() []string {
	out := make([]string, len(stockModels))
	copy(out, stockModels)
	return out
}
