package scoring

// RuleSet maps a stat key to its per-unit point weight for one league.
// Fetched once per cycle and treated as immutable within it.
type RuleSet map[string]float64

// StatLine maps a stat key to the observed count for one player in one
// week, as reported by the shared stats feed.
type StatLine map[string]float64

// HasCustomRules reports whether the rule set differs from the given
// baseline. Platforms pre-apply standard scoring; anything custom means
// the engine's recomputation is the source of truth.
func (r RuleSet) HasCustomRules(baseline RuleSet) bool {
	if len(r) != len(baseline) {
		return true
	}
	for key, weight := range r {
		base, ok := baseline[key]
		if !ok || base != weight {
			return true
		}
	}
	return false
}
