package designprompt

import (
	"fmt"

	"custemoapi/models"
)

// Physical descriptions used by the material, garment and decoration layers.
// Every enum value must have an entry; see the totality tests.

var fabricDescriptions = map[models.Fabric]string{
	models.FabricOrganicCotton:     "soft organic cotton with a matte, breathable surface and a fine visible weave",
	models.FabricEthicalSilk:       "fluid ethical silk with a liquid drape, subtle sheen and soft specular highlights",
	models.FabricPureLinen:         "pure linen with a dry hand, natural slubs and relaxed creases",
	models.FabricRecycledPolyester: "smooth recycled polyester with a crisp technical finish and a faint satin glow",
	models.FabricHempBlend:         "textured hemp blend with an earthy, slightly irregular weave and a structured body",
	models.FabricHeavyweightFleece: "dense heavyweight fleece with a brushed surface and soft, rounded folds",
	models.FabricSelvedgeDenim:     "rigid selvedge denim with a twill diagonal, indigo depth and sharp fold lines",
}

var fitDescriptions = map[models.Fit]string{
	models.FitSlim:      "cut close to the body with clean tapered lines",
	models.FitRegular:   "classic comfortable silhouette with natural ease",
	models.FitOversized: "dropped shoulders and generous volume that hangs loosely",
	models.FitTailored:  "precisely tailored with structured shoulders and a sharp waist",
}

var printDescriptions = map[models.PrintMethod]string{
	models.PrintScreen:       "screen printed with flat, opaque ink that sits slightly on top of the fibres",
	models.PrintEmbroidery:   "embroidered with raised satin stitching and visible thread texture",
	models.PrintDTG:          "direct-to-garment printed with soft ink absorbed into the fibres",
	models.PrintHeatTransfer: "heat transferred with a smooth, slightly glossy film",
	models.PrintPuff:         "puff printed with dimensional, raised foam ink",
}

var patternDescriptions = map[models.Pattern]string{
	models.PatternStripes: "woven with evenly spaced stripes",
	models.PatternChecks:  "woven with a classic check pattern",
	models.PatternFloral:  "printed with an all-over floral motif",
	models.PatternCamo:    "printed with an all-over camouflage pattern",
}

var graphicDescriptions = map[models.Graphic]string{
	models.GraphicMinimalLogo:  "a minimal logo",
	models.GraphicAbstractArt:  "an abstract art graphic",
	models.GraphicTypography:   "a bold typography graphic",
	models.GraphicVintageBadge: "a vintage badge graphic",
	models.GraphicCustom:       "a custom vector logo",
}

var genderTerms = map[models.Collection]string{
	models.CollectionMen:    "male",
	models.CollectionWomen:  "female",
	models.CollectionUnisex: "androgynous",
}

var hardwareDescriptions = map[models.Hardware]string{
	models.HardwareStandard:      "standard tonal hardware",
	models.HardwareMatteBlack:    "matte black hardware",
	models.HardwareBrushedGold:   "brushed gold hardware",
	models.HardwareSilver:        "polished silver hardware",
	models.HardwareWoodenButtons: "natural wooden buttons",
}

// FabricDescription returns the material fragment for f. It panics on a value
// without an entry, which can only happen when the enum grows without the table.
func FabricDescription(f models.Fabric) string {
	return mustLookup(fabricDescriptions, f, "fabric")
}

func FitDescription(f models.Fit) string {
	return mustLookup(fitDescriptions, f, "fit")
}

func PrintDescription(p models.PrintMethod) string {
	return mustLookup(printDescriptions, p, "print method")
}

func GenderTerm(c models.Collection) string {
	return mustLookup(genderTerms, c, "collection")
}

func HardwareDescription(h models.Hardware) string {
	return mustLookup(hardwareDescriptions, h, "hardware")
}

func mustLookup[K ~string](table map[K]string, key K, kind string) string {
	v, ok := table[key]
	if !ok {
		panic(fmt.Sprintf("designprompt: no %s entry for %q", kind, string(key)))
	}
	return v
}

// mustBeValid guards enums that are written into the prompt verbatim.
func mustBeValid[E interface {
	~string
	Valid() bool
}](v E, kind string) string {
	if !v.Valid() {
		panic(fmt.Sprintf("designprompt: unknown %s %q", kind, string(v)))
	}
	return string(v)
}
