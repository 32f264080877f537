package fitness

// RecommendationThreshold is the minimum score that earns team recommendations.
const RecommendationThreshold = 4

// teamRecommendations lists the team tags suggested for a strong subject.
var teamRecommendations = map[Subject][]string{
	SubjectSitUps:      {"⚽ 足球隊 (核心強)"},
	SubjectFlexibility: {"🎾 壁球隊 (柔軟)"},
	SubjectGrip:        {"🏓 乒乓球隊 (爆發力)"},
	SubjectCardio:      {"🏊 游泳隊 (耐力)", "🏃 田徑隊 (耐力)"},
}

// Build validates a measurement and derives its AssessmentResult.
// PRE: none
// POST: returns a result with 5 items in Subjects order, or a *ValidationError
// INVARIANT: pure; m is not mutated
func Build(m RawMeasurement) (AssessmentResult, error) {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return AssessmentResult{}, err
	}

	bmi := ComputeBMI(m.HeightCm, m.WeightKg)

	items := make([]ScoredItem, 0, len(Subjects))
	for _, s := range Subjects {
		raw := m.RawValue(s)
		if s == SubjectBMI {
			raw = bmi
		}
		items = append(items, ScoredItem{
			Subject:  s,
			Label:    s.Label(),
			RawValue: raw,
			Unit:     s.Unit(),
			Score:    Score(s, m.Gender, DefaultAgeBand, raw),
			FullMark: FullMark,
		})
	}

	return AssessmentResult{
		Measurement:     m,
		Items:           items,
		BMI:             bmi,
		Recommendations: recommend(items, teamRecommendations),
		Best:            best(items),
		Worst:           worst(items),
	}, nil
}

// recommend collects the team tags of every strong item, deduplicated in
// first-insertion order.
func recommend(items []ScoredItem, table map[Subject][]string) []string {
	seen := make(map[string]bool)
	recs := []string{}
	for _, it := range items {
		if it.Score < RecommendationThreshold {
			continue
		}
		for _, tag := range table[it.Subject] {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			recs = append(recs, tag)
		}
	}
	return recs
}

// best returns the first item holding the maximum score.
// PRE: len(items) > 0
func best(items []ScoredItem) ScoredItem {
	b := items[0]
	for _, it := range items[1:] {
		if it.Score > b.Score {
			b = it
		}
	}
	return b
}

// worst returns the first item holding the minimum score.
// PRE: len(items) > 0
func worst(items []ScoredItem) ScoredItem {
	w := items[0]
	for _, it := range items[1:] {
		if it.Score < w.Score {
			w = it
		}
	}
	return w
}
