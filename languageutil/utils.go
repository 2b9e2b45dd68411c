package languageutil

import (
	"math/rand"
	"strings"

	"custemoapi/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TitleCaser = cases.Title(language.English)
var LowerCaser = cases.Lower(language.English)

var Adjs []string = []string{
	"bold",
	"quiet",
	"classic",
	"modern",
	"easy",
	"sharp",
	"relaxed",
	"weekend",
	"studio",
	"city",
	"coastal",
	"midnight",
	"everyday",
	"signature",
	"heritage",
}

func RandomAdjective() string {
	pick := rand.Intn(len(Adjs))
	return Adjs[pick]
}

// NormalizeName collapses whitespace and title-cases a person's name.
func NormalizeName(name string) string {
	return TitleCaser.String(LowerCaser.String(strings.Join(strings.Fields(name), " ")))
}

// DesignName is the fallback title for a saved design, e.g. "Bold Pure Linen Shirt".
func DesignName(cfg models.GarmentConfiguration) string {
	return TitleCaser.String(RandomAdjective() + " " + LowerCaser.String(string(cfg.Fabric)+" "+string(cfg.GarmentType)))
}
