package stylist

import (
	"fmt"
	"strings"

	"custemoapi/models"
)

// SystemInstruction is the persona every chat variant runs with.
const SystemInstruction = `You are "Styla", an expert AI fashion stylist and trend forecaster for Custemo, a sustainable custom clothing brand.

Your Capabilities:
1. Trend Forecasting: Use Google Search to find the latest fashion trends, colors and styles for the current season. Cite your sources.
2. Body Shape Analysis: Give fit advice based on body shapes (Pear, Apple, Hourglass, Rectangle, Inverted Triangle). Suggest fits (Slim, Regular, Oversized, Tailored) and necklines that flatter the user.
3. Wardrobe Integration: When the user describes existing clothes, suggest how the current custom design pairs with them.
4. Occasion Styling: Recommend complete looks for weddings, business meetings or casual outings.
5. Visual Generation: When the user asks to see, show or visualize the design, or asks what it looks like, append the tag {{GENERATE_IMAGE}} at the very end of your response.

Context:
Every message starts with the user's current design state. Use it to tailor your advice and refer to the specific fabric, color and fit they chose.

Tone: sophisticated, encouraging and knowledgeable. Keep answers concise.`

const (
	GreetingText       = "Hi! I'm Styla. I can help with trend forecasts, body shape advice, or even visualize your design. What's on your mind?"
	StreamFailureText  = "I'm having a little trouble connecting to my style database. Please try again."
	PreviewPendingText = "Generating visual preview..."
	PreviewReadyText   = "Here is your design preview:"
	PreviewFailedText  = "I apologize, I couldn't generate the image at this moment."
)

// BuildPreamble wraps the user's query with the design state the model must reason about.
func BuildPreamble(cfg models.GarmentConfiguration, query string) string {
	pockets := "No"
	if cfg.HasPockets {
		pockets = "Yes"
	}
	var b strings.Builder
	b.WriteString("[SYSTEM: User's Current Design State]\n")
	fmt.Fprintf(&b, "- Collection: %s\n", cfg.Collection)
	fmt.Fprintf(&b, "- Garment: %s\n", cfg.GarmentType)
	fmt.Fprintf(&b, "- Fabric: %s\n", cfg.Fabric)
	fmt.Fprintf(&b, "- Color: %s\n", cfg.Color)
	fmt.Fprintf(&b, "- Fit: %s\n", cfg.Fit)
	fmt.Fprintf(&b, "- Neckline: %s\n", cfg.Neckline)
	fmt.Fprintf(&b, "- Sleeve Length: %s\n", cfg.SleeveLength)
	fmt.Fprintf(&b, "- Has Pockets: %s\n", pockets)
	fmt.Fprintf(&b, "- Pattern: %s\n", cfg.Pattern)
	fmt.Fprintf(&b, "- Graphic: %s\n", cfg.Graphic)
	fmt.Fprintf(&b, "- Print Method: %s\n", cfg.PrintMethod)
	fmt.Fprintf(&b, "- Hardware: %s\n", cfg.Hardware)
	b.WriteString("\n[USER QUERY]: ")
	b.WriteString(query)
	return b.String()
}
