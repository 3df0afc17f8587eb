package analysis

import (
	"strings"

	"github.com/FACorreiaa/raiox-score/pkg/numeric"
	"github.com/FACorreiaa/raiox-score/pkg/textnorm"
)

// yesTokens are the whole-cell values read as "present". Whole-cell matching
// keeps "NÃO OK" from reading as yes.
var yesTokens = map[string]struct{}{
	"sim": {},
	"s":   {},
	"ok":  {},
	"yes": {},
	"y":   {},
	"x":   {},
}

// IsYes reports whether a flag cell means the item is present.
func IsYes(value string) bool {
	_, ok := yesTokens[textnorm.Fold(strings.TrimSpace(value))]
	return ok
}

// HasExtraDisplay reads the extra display column, which holds either a flag
// or a count of extra display points.
func HasExtraDisplay(value string) bool {
	return IsYes(value) || numeric.IsPositive(value)
}
