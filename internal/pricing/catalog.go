package pricing

import (
	"fmt"

	"github.com/xtding233/enhance-cost/internal/model"
)

// Catalog subtype codes of the quality tools (itemUpgradeSubType).
var toolSubtypes = map[model.Tool]string{
	model.Primary:   "5062009",
	model.Secondary: "5062010",
	model.Auxiliary: "5062500",
}

// Subtype returns the catalog subtype code of tool.
func Subtype(tool model.Tool) string { return toolSubtypes[tool] }

// ToolForSubtype maps a catalog subtype code back to its tool.
func ToolForSubtype(code string) (model.Tool, error) {
	for tool, c := range toolSubtypes {
		if c == code {
			return tool, nil
		}
	}
	return 0, fmt.Errorf("unknown tool subtype %q", code)
}

// CatalogURL is the catalog page an observation of kind was read from.
func CatalogURL(item string, kind Kind) string {
	level, subtype := 0, ""
	if kind.Type == ToolUse {
		subtype = Subtype(kind.Tool)
	} else {
		level = kind.Level
	}
	return fmt.Sprintf("https://msu.io/navigator/item/%s?itemUpgrade=%d&itemUpgradeSubType=%s&itemUpgradeType=%d",
		item, level, subtype, int(kind.Type))
}
