package insights

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// MinTopPerformerSample is the smallest sample a top-performer profile can be
// derived from; anything smaller returns no profile rather than a misleading one.
const MinTopPerformerSample = 3

// Subject is one member of a sample: an outcome score to rank by plus the
// subject's competency and talent vectors. Vector values are pointers so a
// metric the subject never scored stays distinguishable from an explicit zero.
type Subject struct {
	AccountID    uuid.UUID
	OutcomeScore float64
	Competencies map[string]*float64
	Talents      map[string]*float64
}

// RankedMetric is one entry of the ranked summary lists.
type RankedMetric struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// TopPerformerProfile is the averaged competency/talent picture of the top
// decile of a sample, ranked by one outcome metric.
type TopPerformerProfile struct {
	OutcomeKey       string             `json:"outcomeKey"`
	SampleSize       int                `json:"sampleSize"`
	TopCount         int                `json:"topCount"`
	Competencies     map[string]float64 `json:"competencies"`
	Talents          map[string]float64 `json:"talents"`
	Top3Competencies []RankedMetric     `json:"top3Competencies"`
	Top5Talents      []RankedMetric     `json:"top5Talents"`
}

// ExtractTopPerformers ranks the sample descending by outcome score, takes the
// top max(1, floor(n*0.10)) subjects, and averages each competency/talent key
// over the non-null values in that slice. Returns nil when the sample is
// smaller than MinTopPerformerSample.
func ExtractTopPerformers(sample []Subject, outcomeKey string) *TopPerformerProfile {
	n := len(sample)
	if n < MinTopPerformerSample {
		return nil
	}

	ranked := make([]Subject, n)
	copy(ranked, sample)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OutcomeScore > ranked[j].OutcomeScore
	})

	topCount := int(math.Floor(float64(n) * 0.10))
	if topCount < 1 {
		topCount = 1
	}
	top := ranked[:topCount]

	competencies := averageVectors(top, func(s Subject) map[string]*float64 { return s.Competencies })
	talents := averageVectors(top, func(s Subject) map[string]*float64 { return s.Talents })

	return &TopPerformerProfile{
		OutcomeKey:       outcomeKey,
		SampleSize:       n,
		TopCount:         topCount,
		Competencies:     competencies,
		Talents:          talents,
		Top3Competencies: topRanked(competencies, 3),
		Top5Talents:      topRanked(talents, 5),
	}
}

func averageVectors(subjects []Subject, pick func(Subject) map[string]*float64) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range subjects {
		for key, val := range pick(s) {
			if val == nil {
				continue
			}
			sums[key] += *val
			counts[key]++
		}
	}
	out := make(map[string]float64, len(sums))
	for key, sum := range sums {
		out[key] = sum / float64(counts[key])
	}
	return out
}

func topRanked(averages map[string]float64, limit int) []RankedMetric {
	ranked := make([]RankedMetric, 0, len(averages))
	for key, score := range averages {
		ranked = append(ranked, RankedMetric{Key: key, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].Key < ranked[j].Key
		}
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
