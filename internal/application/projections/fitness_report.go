package projections

import (
	"math"
	"strconv"
	"strings"

	"pefitness/internal/domain/fitness"
)

// Badge colours by item score.
const (
	BadgeGold   = "#fbbf24"
	BadgeSilver = "#94a3b8"
	BadgeBronze = "#b45309"
	BadgeSlate  = "#475569"
)

// Radar geometry in SVG user units.
const (
	RadarSize   = 300.0
	radarCentre = RadarSize / 2
	radarRadius = 110.0
	labelRadius = 132.0
)

// ReportRow is one item of the bar chart.
type ReportRow struct {
	Subject    fitness.Subject
	Label      string
	Value      string // raw value with unit, e.g. "27.5cm"
	Score      int
	FullMark   int
	BarPercent int // 0..100
	Color      string
}

// RadarAxis is one spoke of the radar chart with its label anchor.
type RadarAxis struct {
	X, Y           float64 // outer end of the spoke
	LabelX, LabelY float64
	Label          string
	Anchor         string // SVG text-anchor
}

// RadarChart holds precomputed SVG coordinates.
type RadarChart struct {
	Size   float64
	Centre float64
	Rings  []string // polygon points for score levels 1..FullMark
	Axes   []RadarAxis
	Shape  string // polygon points of the student's scores
}

// FitnessReport is the view model of a result page.
type FitnessReport struct {
	Name            string
	ClassLabel      string
	ClassNumber     int
	Gender          string
	Rows            []ReportRow
	Radar           RadarChart
	TotalScore      int
	MaxScore        int
	Best            string
	Worst           string
	Recommendations []string
}

// QueryFitnessReport shapes an assessment for display.
// PRE: r was produced by fitness.Build
// POST: Rows and Radar axes follow fitness.Subjects order
func QueryFitnessReport(r fitness.AssessmentResult) FitnessReport {
	m := r.Measurement
	rows := make([]ReportRow, len(r.Items))
	scores := make([]int, len(r.Items))
	labels := make([]string, len(r.Items))
	for i, it := range r.Items {
		rows[i] = ReportRow{
			Subject:    it.Subject,
			Label:      it.Label,
			Value:      displayValue(it, r.BMI),
			Score:      it.Score,
			FullMark:   it.FullMark,
			BarPercent: barPercent(it.Score, it.FullMark),
			Color:      BadgeColor(it.Score),
		}
		scores[i] = it.Score
		labels[i] = it.Label
	}

	return FitnessReport{
		Name:            m.Name,
		ClassLabel:      m.ClassLabel,
		ClassNumber:     m.ClassNumber,
		Gender:          m.GenderLabel(),
		Rows:            rows,
		Radar:           radar(scores, labels),
		TotalScore:      r.TotalScore(),
		MaxScore:        len(r.Items) * fitness.FullMark,
		Best:            r.Best.Label,
		Worst:           r.Worst.Label,
		Recommendations: r.Recommendations,
	}
}

// BadgeColor maps a score to its badge colour.
func BadgeColor(score int) string {
	switch {
	case score >= 5:
		return BadgeGold
	case score >= 4:
		return BadgeSilver
	case score >= 3:
		return BadgeBronze
	}
	return BadgeSlate
}

func barPercent(score, full int) int {
	if full <= 0 {
		return 0
	}
	p := score * 100 / full
	return max(0, min(100, p))
}

func displayValue(it fitness.ScoredItem, bmi float64) string {
	if it.Subject == fitness.SubjectBMI {
		return strconv.FormatFloat(bmi, 'f', 1, 64)
	}
	return strconv.FormatFloat(it.RawValue, 'f', -1, 64) + it.Unit
}

func radar(scores []int, labels []string) RadarChart {
	n := len(scores)
	chart := RadarChart{Size: RadarSize, Centre: radarCentre}
	if n == 0 {
		return chart
	}

	for level := 1; level <= fitness.FullMark; level++ {
		ring := make([]int, n)
		for i := range ring {
			ring[i] = level
		}
		chart.Rings = append(chart.Rings, polygon(ring))
	}

	chart.Axes = make([]RadarAxis, n)
	for i := range scores {
		x, y := spoke(i, n, radarRadius)
		lx, ly := spoke(i, n, labelRadius)
		chart.Axes[i] = RadarAxis{
			X: x, Y: y,
			LabelX: lx, LabelY: ly,
			Label:  labels[i],
			Anchor: anchorFor(lx),
		}
	}
	chart.Shape = polygon(scores)
	return chart
}

// spoke returns the point at distance r on axis i of n, starting at 12 o'clock.
func spoke(i, n int, r float64) (float64, float64) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return round1(radarCentre + r*math.Cos(angle)), round1(radarCentre + r*math.Sin(angle))
}

func polygon(scores []int) string {
	pts := make([]string, len(scores))
	for i, s := range scores {
		r := radarRadius * float64(s) / fitness.FullMark
		x, y := spoke(i, len(scores), r)
		pts[i] = strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
	}
	return strings.Join(pts, " ")
}

func anchorFor(x float64) string {
	switch {
	case x < radarCentre-1:
		return "end"
	case x > radarCentre+1:
		return "start"
	}
	return "middle"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
