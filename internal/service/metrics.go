package service

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/support-qa/backend/internal/models"
)

// ErrHierarchyMismatch is returned when both an agent and a team leader filter
// are supplied and the agent does not report to that team leader.
var ErrHierarchyMismatch = errors.New("agent does not report to the selected team leader")

const UnknownAgentName = "Unknown Agent"

// DayStart converts a YYYY-MM-DD calendar date, read as local midnight at the
// given UTC offset, to a UTC instant. ok is false when the date does not
// parse; the caller treats that as "filter omitted", never as a failure.
func DayStart(date string, offsetHours int) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(-time.Duration(offsetHours) * time.Hour), true
}

// DayEnd is the 23:59:59.999 counterpart of DayStart. A start boundary after
// an end boundary is passed through unchanged; the query simply matches
// nothing.
func DayEnd(date string, offsetHours int) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, false
	}
	end := d.Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond)
	return end.Add(-time.Duration(offsetHours) * time.Hour), true
}

// ResolveAgents turns the requested subject into the concrete agent id set to
// query. A bare agent id passes through as-is even when absent from the
// roster, so stale or filtered rosters do not block lookups. A team leader
// expands to the roster agents reporting to them; an empty expansion means
// the caller must short-circuit to zero results without issuing the query.
func ResolveAgents(agentID, teamLeaderID string, roster []models.User) ([]string, error) {
	if agentID != "" {
		if teamLeaderID != "" {
			for _, u := range roster {
				if u.ID != agentID {
					continue
				}
				if u.TeamLeaderID == nil || *u.TeamLeaderID != teamLeaderID {
					return nil, ErrHierarchyMismatch
				}
				break
			}
		}
		return []string{agentID}, nil
	}
	if teamLeaderID == "" {
		return nil, nil
	}
	var ids []string
	for _, u := range roster {
		if u.Role == models.RoleAgent && u.TeamLeaderID != nil && *u.TeamLeaderID == teamLeaderID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type AgentMetric struct {
	AgentID string   `json:"agent_id"`
	Name    string   `json:"name"`
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

type MetricsReport struct {
	OverallAverage *float64      `json:"overall_average"`
	Scored         int           `json:"scored"`
	PerAgent       []AgentMetric `json:"per_agent"`
}

// Aggregate folds evaluation projections into the overall mean, a per-agent
// breakdown and a ranking. Absent scores are excluded from averaging, not
// treated as zero; an agent contributing no scores is dropped from the
// breakdown entirely. Ranking is descending by average with undefined
// averages last.
func Aggregate(evals []models.EvaluationScore, roster []models.User) MetricsReport {
	names := make(map[string]string, len(roster))
	for _, u := range roster {
		names[u.ID] = u.Name
	}

	type bucket struct {
		total float64
		count int
	}
	buckets := map[string]*bucket{}
	var order []string

	var total float64
	var scored int
	for _, e := range evals {
		b, ok := buckets[e.AgentID]
		if !ok {
			b = &bucket{}
			buckets[e.AgentID] = b
			order = append(order, e.AgentID)
		}
		if e.ManualScore == nil {
			continue
		}
		total += *e.ManualScore
		scored++
		b.total += *e.ManualScore
		b.count++
	}

	report := MetricsReport{Scored: scored}
	if scored > 0 {
		avg := total / float64(scored)
		report.OverallAverage = &avg
	}

	for _, id := range order {
		b := buckets[id]
		if b.count == 0 {
			continue
		}
		name, ok := names[id]
		if !ok {
			name = UnknownAgentName
		}
		avg := b.total / float64(b.count)
		report.PerAgent = append(report.PerAgent, AgentMetric{
			AgentID: id,
			Name:    name,
			Average: &avg,
			Count:   b.count,
		})
	}

	sort.SliceStable(report.PerAgent, func(i, j int) bool {
		a, b := report.PerAgent[i].Average, report.PerAgent[j].Average
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})
	return report
}

type KPICount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// KPIFrequency tallies KPI category occurrences. A category named twice on
// one evaluation counts twice. First-seen order is retained for tie-breaking.
type KPIFrequency struct {
	counts map[string]int
	order  []string
}

func CountKPIs(evals []models.EvaluationScore) *KPIFrequency {
	f := &KPIFrequency{counts: map[string]int{}}
	for _, e := range evals {
		for _, tag := range e.KPICategory {
			if _, seen := f.counts[tag]; !seen {
				f.order = append(f.order, tag)
			}
			f.counts[tag]++
		}
	}
	return f
}

func (f *KPIFrequency) Count(category string) int {
	return f.counts[category]
}

// Sorted returns categories descending by count; equal counts keep first-seen
// order, not alphabetic.
func (f *KPIFrequency) Sorted() []KPICount {
	out := make([]KPICount, 0, len(f.order))
	for _, tag := range f.order {
		out = append(out, KPICount{Category: tag, Count: f.counts[tag]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// AccuracyPercent derives the manual/AI match percentage on the [1,5] score
// scale: 100 - |manual-ai|/5*100. Nil when either score is absent or not
// finite; no partial computation.
func AccuracyPercent(manual, ai *float64) *float64 {
	if manual == nil || ai == nil {
		return nil
	}
	m, a := *manual, *ai
	if math.IsNaN(m) || math.IsInf(m, 0) || math.IsNaN(a) || math.IsInf(a, 0) {
		return nil
	}
	p := 100 - math.Abs(m-a)/5*100
	return &p
}

// FractionFromPercent is the stored form of an accuracy percentage.
func FractionFromPercent(percent float64) float64 {
	return percent / 100
}

func PercentFromFraction(fraction float64) float64 {
	return fraction * 100
}

type SentimentStats struct {
	Total           int     `json:"total"`
	Positive        int     `json:"positive"`
	Negative        int     `json:"negative"`
	Neutral         int     `json:"neutral"`
	PositivePercent float64 `json:"positive_percent"`
	NegativePercent float64 `json:"negative_percent"`
	NeutralPercent  float64 `json:"neutral_percent"`
	AverageScore    float64 `json:"average_score"`
}

// AggregateSentiment tallies per-label counts, their percentage shares and
// the mean confidence over all stored results. With nothing analyzed yet the
// shares and the mean stay 0.
func AggregateSentiment(results []models.SentimentScore) SentimentStats {
	var s SentimentStats
	var sum float64
	for _, r := range results {
		s.Total++
		sum += r.SentimentScore
		switch r.SentimentLabel {
		case models.SentimentPositive:
			s.Positive++
		case models.SentimentNegative:
			s.Negative++
		case models.SentimentNeutral:
			s.Neutral++
		}
	}
	if s.Total > 0 {
		s.PositivePercent = float64(s.Positive) / float64(s.Total) * 100
		s.NegativePercent = float64(s.Negative) / float64(s.Total) * 100
		s.NeutralPercent = float64(s.Neutral) / float64(s.Total) * 100
		s.AverageScore = sum / float64(s.Total)
	}
	return s
}

// SentimentGauge maps a sentiment label plus its confidence onto the [0,100]
// dial. Each label owns a fixed third-ish of the range so the needle region
// alone identifies the class: Negative [0,40), Neutral [40,60), Positive
// [60,100]. The kinks at 40 and 60 are intentional.
func SentimentGauge(label string, score float64) float64 {
	switch label {
	case models.SentimentNegative:
		return score * 40
	case models.SentimentNeutral:
		return 40 + score*20
	default:
		return 60 + score*40
	}
}
