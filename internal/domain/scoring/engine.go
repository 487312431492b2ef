package scoring

import "sort"

// Score applies a league's rule set to one player's observed stat line.
//
//	total = sum over shared keys of line[key] * rules[key]
//
// A key missing from either map contributes zero. No clamping and no
// rounding; display formatting is the consumer's concern. Keys are
// summed in sorted order so the floating-point total is identical for
// any input map iteration order.
func Score(line StatLine, rules RuleSet) float64 {
	if len(line) == 0 || len(rules) == 0 {
		return 0
	}

	keys := make([]string, 0, len(line))
	for key := range line {
		if _, ok := rules[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	total := 0.0
	for _, key := range keys {
		total += line[key] * rules[key]
	}
	return total
}

// ScoreAll computes totals for a batch of players against one rule set.
func ScoreAll(lines map[string]StatLine, rules RuleSet) map[string]float64 {
	out := make(map[string]float64, len(lines))
	for playerID, line := range lines {
		out[playerID] = Score(line, rules)
	}
	return out
}
