// Package rules contains the individual architecture rules. Every rule is a
// heuristic pattern scan over raw file text, not a parser, so
// false positives are possible and each rule documents its signal set.
package rules

import "github.com/CyberHandLLC/archguard/internal/engine"

// Default returns the full rule set in its canonical order.
func Default(maxLines int) []engine.Rule {
	return []engine.Rule{
		NewBoundaryRule(),
		NewSizeRule(maxLines),
		NewDataFetchRule(),
		NewResourceRule(),
		NewStructureRule(),
	}
}
