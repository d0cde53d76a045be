// ABOUTME: Derived dashboard figures computed from entity lists
// ABOUTME: Metrics, per-stage summaries, recent activity, and money formatting
package viz

import (
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/crmdash/models"
)

// Metrics are the headline numbers shown on the dashboard.
type Metrics struct {
	TotalContacts  int
	TotalDeals     int
	ActiveDeals    int
	ClosedWon      int
	PipelineValue  float64
	ConversionRate int // percent
}

// ComputeMetrics derives dashboard metrics. Pipeline value sums every deal,
// closed or not; a deal is active while its stage name lacks "closed".
func ComputeMetrics(contacts []models.Contact, deals []models.Deal) Metrics {
	m := Metrics{
		TotalContacts: len(contacts),
		TotalDeals:    len(deals),
	}
	for _, d := range deals {
		m.PipelineValue += d.Value
		if !d.Stage.Closed() {
			m.ActiveDeals++
		}
		if d.Stage == models.StageClosedWon {
			m.ClosedWon++
		}
	}
	m.ConversionRate = ConversionRate(m.ClosedWon, m.TotalDeals)
	return m
}

// ConversionRate is round(100*won/total), or 0 with no deals.
func ConversionRate(won, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(won) / float64(total) * 100))
}

// ActivePipelineValue sums the value of deals that are not closed.
func ActivePipelineValue(deals []models.Deal) float64 {
	var total float64
	for _, d := range deals {
		if !d.Stage.Closed() {
			total += d.Value
		}
	}
	return total
}

// OverviewStages are the stages shown in the dashboard pipeline overview.
func OverviewStages() []models.Stage {
	return []models.Stage{models.StageLead, models.StageQualified, models.StageProposal, models.StageNegotiation}
}

// BoardStages are the columns of the deal pipeline board. Lost deals are not shown.
func BoardStages() []models.Stage {
	return []models.Stage{models.StageLead, models.StageQualified, models.StageProposal, models.StageNegotiation, models.StageClosedWon}
}

// StageSummary groups the deals in one stage.
type StageSummary struct {
	Stage models.Stage
	Count int
	Value float64
	Deals []models.Deal
}

func (s StageSummary) Label() string { return s.Stage.Label() }

// StageSummaries buckets deals into stages, keeping list order inside a stage.
// Deals in stages not listed are ignored.
func StageSummaries(deals []models.Deal, stages []models.Stage) []StageSummary {
	out := make([]StageSummary, len(stages))
	index := make(map[models.Stage]int, len(stages))
	for i, s := range stages {
		out[i] = StageSummary{Stage: s, Deals: []models.Deal{}}
		index[s] = i
	}
	for _, d := range deals {
		i, ok := index[d.Stage]
		if !ok {
			continue
		}
		out[i].Count++
		out[i].Value += d.Value
		out[i].Deals = append(out[i].Deals, d)
	}
	return out
}

// RecentActivities returns the first n activities. Lists are kept newest first.
func RecentActivities(activities []models.Activity, n int) []models.Activity {
	if n < 0 {
		n = 0
	}
	if len(activities) < n {
		n = len(activities)
	}
	out := make([]models.Activity, n)
	copy(out, activities[:n])
	return out
}

// UnknownContact is shown when a weak contact reference does not resolve.
const UnknownContact = "Unknown Contact"

// ContactNames indexes contact names by id.
func ContactNames(contacts []models.Contact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}
	return names
}

// ContactName resolves id against names.
func ContactName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return UnknownContact
}

// FormatMoney renders v as US dollars with thousands separators, e.g. $12,500.
// Up to three fractional digits are kept and trailing zeros dropped.
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
