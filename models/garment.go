package models

import (
	"slices"

	"github.com/go-playground/validator"
)

type Collection string

const (
	CollectionMen    Collection = "Men"
	CollectionWomen  Collection = "Women"
	CollectionUnisex Collection = "Unisex"
)

type GarmentType string

const (
	GarmentShirt  GarmentType = "Shirt"
	GarmentDress  GarmentType = "Dress"
	GarmentPants  GarmentType = "Pants"
	GarmentHoodie GarmentType = "Hoodie"
	GarmentJacket GarmentType = "Jacket"
)

type Fabric string

const (
	FabricOrganicCotton     Fabric = "Organic Cotton"
	FabricEthicalSilk       Fabric = "Ethical Silk"
	FabricPureLinen         Fabric = "Pure Linen"
	FabricRecycledPolyester Fabric = "Recycled Polyester"
	FabricHempBlend         Fabric = "Hemp Blend"
	FabricHeavyweightFleece Fabric = "Heavyweight Fleece"
	FabricSelvedgeDenim     Fabric = "Selvedge Denim"
)

type Fit string

const (
	FitSlim      Fit = "Slim Fit"
	FitRegular   Fit = "Regular Fit"
	FitOversized Fit = "Oversized"
	FitTailored  Fit = "Tailored"
)

type Neckline string

const (
	NecklineCrew     Neckline = "Crew Neck"
	NecklineV        Neckline = "V-Neck"
	NecklineCollared Neckline = "Collared"
	NecklineBoat     Neckline = "Boat Neck"
	NecklineHooded   Neckline = "Hooded"
)

type Pattern string

const (
	PatternNone    Pattern = "None"
	PatternSolid   Pattern = "Solid"
	PatternStripes Pattern = "Stripes"
	PatternChecks  Pattern = "Checks"
	PatternFloral  Pattern = "Floral"
	PatternCamo    Pattern = "Camo"
)

type Graphic string

const (
	GraphicNone         Graphic = "None"
	GraphicMinimalLogo  Graphic = "Minimal Logo"
	GraphicAbstractArt  Graphic = "Abstract Art"
	GraphicTypography   Graphic = "Typography"
	GraphicVintageBadge Graphic = "Vintage Badge"
	GraphicCustom       Graphic = "Custom"
)

type PrintMethod string

const (
	PrintScreen       PrintMethod = "Screen Print"
	PrintEmbroidery   PrintMethod = "Embroidery"
	PrintDTG          PrintMethod = "DTG"
	PrintHeatTransfer PrintMethod = "Heat Transfer"
	PrintPuff         PrintMethod = "Puff Print"
)

type Hardware string

const (
	HardwareStandard      Hardware = "Standard"
	HardwareMatteBlack    Hardware = "Matte Black"
	HardwareBrushedGold   Hardware = "Brushed Gold"
	HardwareSilver        Hardware = "Silver"
	HardwareWoodenButtons Hardware = "Wooden Buttons"
)

type SleeveLength string

const (
	SleeveShort SleeveLength = "short"
	SleeveLong  SleeveLength = "long"
)

func AllCollections() []Collection {
	return []Collection{CollectionMen, CollectionWomen, CollectionUnisex}
}

func AllGarmentTypes() []GarmentType {
	return []GarmentType{GarmentShirt, GarmentDress, GarmentPants, GarmentHoodie, GarmentJacket}
}

func AllFabrics() []Fabric {
	return []Fabric{
		FabricOrganicCotton, FabricEthicalSilk, FabricPureLinen, FabricRecycledPolyester,
		FabricHempBlend, FabricHeavyweightFleece, FabricSelvedgeDenim,
	}
}

func AllFits() []Fit {
	return []Fit{FitSlim, FitRegular, FitOversized, FitTailored}
}

func AllNecklines() []Neckline {
	return []Neckline{NecklineCrew, NecklineV, NecklineCollared, NecklineBoat, NecklineHooded}
}

func AllPatterns() []Pattern {
	return []Pattern{PatternNone, PatternSolid, PatternStripes, PatternChecks, PatternFloral, PatternCamo}
}

func AllGraphics() []Graphic {
	return []Graphic{GraphicNone, GraphicMinimalLogo, GraphicAbstractArt, GraphicTypography, GraphicVintageBadge, GraphicCustom}
}

func AllPrintMethods() []PrintMethod {
	return []PrintMethod{PrintScreen, PrintEmbroidery, PrintDTG, PrintHeatTransfer, PrintPuff}
}

func AllHardware() []Hardware {
	return []Hardware{HardwareStandard, HardwareMatteBlack, HardwareBrushedGold, HardwareSilver, HardwareWoodenButtons}
}

func AllSleeveLengths() []SleeveLength {
	return []SleeveLength{SleeveShort, SleeveLong}
}

func (v Collection) Valid() bool   { return slices.Contains(AllCollections(), v) }
func (v GarmentType) Valid() bool  { return slices.Contains(AllGarmentTypes(), v) }
func (v Fabric) Valid() bool       { return slices.Contains(AllFabrics(), v) }
func (v Fit) Valid() bool          { return slices.Contains(AllFits(), v) }
func (v Neckline) Valid() bool     { return slices.Contains(AllNecklines(), v) }
func (v Pattern) Valid() bool      { return slices.Contains(AllPatterns(), v) }
func (v Graphic) Valid() bool      { return slices.Contains(AllGraphics(), v) }
func (v PrintMethod) Valid() bool  { return slices.Contains(AllPrintMethods(), v) }
func (v Hardware) Valid() bool     { return slices.Contains(AllHardware(), v) }
func (v SleeveLength) Valid() bool { return slices.Contains(AllSleeveLengths(), v) }

// GarmentConfiguration is the full studio state of one garment. It is replaced
// wholesale on every edit and never partially populated.
type GarmentConfiguration struct {
	Collection       Collection   `json:"collection" validate:"required,collection"`
	GarmentType      GarmentType  `json:"garmentType" validate:"required,garmenttype"`
	Color            string       `json:"color" validate:"required,hexcolor"`
	Fabric           Fabric       `json:"fabric" validate:"required,fabric"`
	Fit              Fit          `json:"fit" validate:"required,fit"`
	Neckline         Neckline     `json:"neckline" validate:"required,neckline"`
	Pattern          Pattern      `json:"pattern" validate:"required,pattern"`
	Graphic          Graphic      `json:"graphic" validate:"required,graphic"`
	PrintMethod      PrintMethod  `json:"printMethod" validate:"required,printmethod"`
	Hardware         Hardware     `json:"hardware" validate:"required,hardware"`
	HasPockets       bool         `json:"hasPockets"`
	SleeveLength     SleeveLength `json:"sleeveLength" validate:"required,sleevelength"`
	CustomGraphicURL *string      `json:"customGraphicUrl,omitempty" validate:"omitempty,max=8000000"`
	TextureOpacity   float64      `json:"textureOpacity" validate:"gte=0,lte=1"`
	TextureScale     float64      `json:"textureScale" validate:"gt=0"`
}

func DefaultGarmentConfiguration() GarmentConfiguration {
	return GarmentConfiguration{
		Collection:     CollectionUnisex,
		GarmentType:    GarmentShirt,
		Color:          "#ffffff",
		Fabric:         FabricOrganicCotton,
		Fit:            FitRegular,
		Neckline:       NecklineCrew,
		Pattern:        PatternSolid,
		Graphic:        GraphicNone,
		PrintMethod:    PrintScreen,
		Hardware:       HardwareStandard,
		HasPockets:     false,
		SleeveLength:   SleeveShort,
		TextureOpacity: 0.6,
		TextureScale:   1,
	}
}

// Normalized drops the custom graphic reference unless the graphic is Custom.
func (g GarmentConfiguration) Normalized() GarmentConfiguration {
	if g.Graphic != GraphicCustom {
		g.CustomGraphicURL = nil
	}
	return g
}

func ValidateCollection(fl validator.FieldLevel) bool {
	return Collection(fl.Field().String()).Valid()
}

func ValidateGarmentType(fl validator.FieldLevel) bool {
	return GarmentType(fl.Field().String()).Valid()
}

func ValidateFabric(fl validator.FieldLevel) bool {
	return Fabric(fl.Field().String()).Valid()
}

func ValidateFit(fl validator.FieldLevel) bool {
	return Fit(fl.Field().String()).Valid()
}

func ValidateNeckline(fl validator.FieldLevel) bool {
	return Neckline(fl.Field().String()).Valid()
}

func ValidatePattern(fl validator.FieldLevel) bool {
	return Pattern(fl.Field().String()).Valid()
}

func ValidateGraphic(fl validator.FieldLevel) bool {
	return Graphic(fl.Field().String()).Valid()
}

func ValidatePrintMethod(fl validator.FieldLevel) bool {
	return PrintMethod(fl.Field().String()).Valid()
}

func ValidateHardware(fl validator.FieldLevel) bool {
	return Hardware(fl.Field().String()).Valid()
}

func ValidateSleeveLength(fl validator.FieldLevel) bool {
	return SleeveLength(fl.Field().String()).Valid()
}
