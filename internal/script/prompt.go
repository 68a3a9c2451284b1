package script

import (
	"fmt"

	"reelforge/internal/catalog"
)

const systemPrompt = "You are a creative video script writer specializing in engaging product marketing content."

// buildPrompt renders the user prompt for one product row.
func buildPrompt(product catalog.ProductRecord) string {
	name := product.Name()
	if name == "" {
		name = "Product"
	}
	return fmt.Sprintf(`Create a 30-60 second video script for this product:

Product Name: %s
Description: %s
Price: %s

Requirements:
- Hook viewers in the first 3 seconds
- Highlight key benefits and features
- Include a clear call-to-action
- Keep it conversational and enthusiastic
- Make it suitable for text-to-speech narration

Format the script as natural spoken dialogue without stage directions.
`, name, product.Description(), product.Price())
}
