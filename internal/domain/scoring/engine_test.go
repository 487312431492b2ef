package scoring

import "testing"

func TestScore_AppliesWeightsToSharedKeys(t *testing.T) {
	t.Parallel()

	rules := RuleSet{"pass_td": 4.0, "pass_yd": 0.04}
	line := StatLine{"pass_td": 3, "pass_yd": 275}

	got := Score(line, rules)
	if got != 23.0 {
		t.Fatalf("unexpected score: got=%v want=23.0", got)
	}
}

func TestScore_MissingKeysContributeZero(t *testing.T) {
	t.Parallel()

	rules := RuleSet{"rush_td": 6.0, "fum_lost": -2.0}
	line := StatLine{"rush_td": 1, "rec": 7}

	if got := Score(line, rules); got != 6.0 {
		t.Fatalf("unexpected score: got=%v want=6.0", got)
	}
	if got := Score(nil, rules); got != 0 {
		t.Fatalf("empty line must score zero, got=%v", got)
	}
	if got := Score(line, nil); got != 0 {
		t.Fatalf("empty rule set must score zero, got=%v", got)
	}
}

func TestScore_DeterministicAcrossKeyOrder(t *testing.T) {
	t.Parallel()

	rules := RuleSet{
		"pass_yd":  0.04,
		"pass_td":  4.0,
		"rush_yd":  0.1,
		"rush_td":  6.0,
		"rec":      0.5,
		"rec_yd":   0.1,
		"fum_lost": -2.0,
	}
	line := StatLine{
		"pass_yd":  312,
		"pass_td":  2,
		"rush_yd":  18,
		"fum_lost": 1,
		"rec":      0,
	}

	first := Score(line, rules)
	for i := 0; i < 50; i++ {
		if got := Score(line, rules); got != first {
			t.Fatalf("score changed between calls: got=%v want=%v", got, first)
		}
	}
}

func TestScoreAll(t *testing.T) {
	t.Parallel()

	rules := RuleSet{"rec": 1.0, "rec_yd": 0.1}
	lines := map[string]StatLine{
		"p1": {"rec": 5, "rec_yd": 60},
		"p2": {"rec_yd": 12},
		"p3": {},
	}

	got := ScoreAll(lines, rules)
	if got["p1"] != 11.0 {
		t.Fatalf("p1: got=%v want=11.0", got["p1"])
	}
	if got["p2"] != 1.2000000000000002 && got["p2"] != 1.2 {
		t.Fatalf("p2: got=%v", got["p2"])
	}
	if got["p3"] != 0 {
		t.Fatalf("p3: got=%v want=0", got["p3"])
	}
}

func TestRuleSet_HasCustomRules(t *testing.T) {
	t.Parallel()

	baseline := RuleSet{"rec": 0.5, "pass_td": 4.0}

	if (RuleSet{"rec": 0.5, "pass_td": 4.0}).HasCustomRules(baseline) {
		t.Fatal("identical rule set reported as custom")
	}
	if !(RuleSet{"rec": 1.0, "pass_td": 4.0}).HasCustomRules(baseline) {
		t.Fatal("changed weight not reported as custom")
	}
	if !(RuleSet{"rec": 0.5}).HasCustomRules(baseline) {
		t.Fatal("missing key not reported as custom")
	}
}
