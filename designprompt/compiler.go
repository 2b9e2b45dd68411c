// Package designprompt turns a garment configuration into the layered natural
// language prompt sent to the image and video models.
package designprompt

import (
	"fmt"
	"strings"

	"custemoapi/models"
)

const (
	layerSeparator = ". "

	// technicalModifier closes every prompt.
	technicalModifier = "Photorealistic, 8k resolution, sharp focus on fabric texture and stitching, " +
		"accurate color reproduction, shot on a full-frame camera with an 85mm lens"

	foldDeformationClause = "the design deforms realistically with the fabric folds and follows the drape of the garment"
)

type LayerName string

const (
	LayerSubject     LayerName = "subject"
	LayerGarment     LayerName = "garment"
	LayerMaterial    LayerName = "material"
	LayerDecoration  LayerName = "decoration"
	LayerEnvironment LayerName = "environment"
	LayerTechnical   LayerName = "technical"
)

type Layer struct {
	Name LayerName `json:"name"`
	Text string    `json:"text"`
}

// IsStreetwearStyle is the single predicate behind both the subject and the
// environment layers.
func IsStreetwearStyle(cfg models.GarmentConfiguration) bool {
	return cfg.Fit == models.FitOversized || cfg.GarmentType == models.GarmentHoodie
}

// Compile assembles the prompt for cfg. It is pure and total over valid
// configurations; freeTextOverride is appended last and may be empty.
func Compile(cfg models.GarmentConfiguration, freeTextOverride string) string {
	layers := CompileLayers(cfg, freeTextOverride)
	parts := make([]string, 0, len(layers))
	for _, l := range layers {
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, layerSeparator) + "."
}

// CompileLayers returns the non-empty layers in prompt order.
func CompileLayers(cfg models.GarmentConfiguration, freeTextOverride string) []Layer {
	streetwear := IsStreetwearStyle(cfg)

	candidates := []Layer{
		{LayerSubject, subjectLayer(cfg, streetwear)},
		{LayerGarment, garmentLayer(cfg)},
		{LayerMaterial, materialLayer(cfg)},
		{LayerDecoration, decorationLayer(cfg)},
		{LayerEnvironment, environmentLayer(streetwear)},
		{LayerTechnical, technicalLayer(freeTextOverride)},
	}
	layers := candidates[:0]
	for _, l := range candidates {
		if l.Text != "" {
			layers = append(layers, l)
		}
	}
	return layers
}

func subjectLayer(cfg models.GarmentConfiguration, streetwear bool) string {
	gender := GenderTerm(cfg.Collection)
	if streetwear {
		return fmt.Sprintf("Candid editorial streetwear photograph of %s %s model with a relaxed, confident attitude", article(gender), gender)
	}
	return fmt.Sprintf("Professional studio fashion photograph of %s %s model in a poised catalogue pose", article(gender), gender)
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func garmentLayer(cfg models.GarmentConfiguration) string {
	pockets := "without pockets"
	if cfg.HasPockets {
		pockets = "with functional pockets"
	}
	return fmt.Sprintf(
		"Wearing a %s %s in a %s (%s), %s neckline, %s sleeves, %s, finished with %s",
		cfg.Color,
		mustBeValid(cfg.GarmentType, "garment type"),
		strings.ToLower(string(cfg.Fit)),
		FitDescription(cfg.Fit),
		mustBeValid(cfg.Neckline, "neckline"),
		mustBeValid(cfg.SleeveLength, "sleeve length"),
		pockets,
		HardwareDescription(cfg.Hardware),
	)
}

func materialLayer(cfg models.GarmentConfiguration) string {
	return "Made of " + FabricDescription(cfg.Fabric)
}

func decorationLayer(cfg models.GarmentConfiguration) string {
	var clauses []string
	if cfg.Graphic != models.GraphicNone {
		graphic := mustLookup(graphicDescriptions, cfg.Graphic, "graphic")
		clauses = append(clauses,
			fmt.Sprintf("Featuring %s %s", graphic, PrintDescription(cfg.PrintMethod)),
			foldDeformationClause,
		)
	}
	if cfg.Pattern != models.PatternSolid && cfg.Pattern != models.PatternNone {
		pattern := mustLookup(patternDescriptions, cfg.Pattern, "pattern")
		if len(clauses) == 0 {
			clauses = append(clauses, "The fabric is "+pattern)
		} else {
			clauses = append(clauses, "the fabric is "+pattern)
		}
	}
	return strings.Join(clauses, ", ")
}

func environmentLayer(streetwear bool) string {
	if streetwear {
		return "Urban street setting with concrete and graffiti textures, hard directional sunlight and high-contrast shadows"
	}
	return "Seamless studio backdrop with soft diffused key light and gentle fill, clean neutral tones"
}

func technicalLayer(freeTextOverride string) string {
	override := strings.TrimRight(strings.TrimSpace(freeTextOverride), ". ")
	if override == "" {
		return technicalModifier
	}
	return technicalModifier + layerSeparator + override
}

// CampaignPrompt is the default editorial prompt for campaign shots.
func CampaignPrompt(cfg models.GarmentConfiguration) string {
	return fmt.Sprintf(
		"A high-fashion editorial shot of a %s %s %s, %s, %s, photorealistic, 8k resolution.",
		cfg.Color, cfg.Fabric, cfg.GarmentType, cfg.Fit, cfg.Neckline,
	)
}
