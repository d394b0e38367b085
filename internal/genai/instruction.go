package genai

import "fmt"

// CompositeInstruction synthesizes the text part sent alongside the image
// parts of a composite call. The wording materially changes model output: the
// two-image variant names each image's role and asks for blended lighting,
// shadows and perspective, while the single-image variant asks for a
// photorealistic edit of the background image itself.
func CompositeInstruction(prompt string, hasProduct bool) string {
	if hasProduct {
		return fmt.Sprintf(
			"Image 1 is the model/background. Image 2 is the product. Please realistically composite the product from Image 2 into Image 1 based on the following instructions: %q. Ensure lighting, shadows, and perspective are seamlessly blended.",
			prompt,
		)
	}
	return fmt.Sprintf(
		"Please edit this background image based on the following instructions: %q. Keep the result photorealistic and preserve the original lighting and perspective.",
		prompt,
	)
}
