package stylist

type ModelVariant string

const (
	VariantStandard  ModelVariant = "standard"
	VariantVision    ModelVariant = "vision"
	VariantReasoning ModelVariant = "reasoning"
)

const reasoningThinkingBudget int32 = 32768

// Route is everything a backend needs to open a session for one variant.
type Route struct {
	Variant        ModelVariant
	SearchEnabled  bool
	ThinkingBudget int32
}

type SendOptions struct {
	UseThinking bool
	Image       *Attachment
}

// SelectRoute picks the variant for one outgoing message. Thinking wins over an
// attached image; reasoning runs without the search tool.
func SelectRoute(opts SendOptions) Route {
	switch {
	case opts.UseThinking:
		return Route{Variant: VariantReasoning, SearchEnabled: false, ThinkingBudget: reasoningThinkingBudget}
	case opts.Image != nil:
		return Route{Variant: VariantVision, SearchEnabled: true}
	default:
		return Route{Variant: VariantStandard, SearchEnabled: true}
	}
}
