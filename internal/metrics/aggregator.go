package metrics

import (
	"sync"
	"time"

	"ghost.confess/internal/models"
)

const (
	// CrisisThreshold is the number of submissions in the trailing
	// CrisisWindow above which the risk level flips to elevated.
	CrisisThreshold = 10
	CrisisWindow    = 24 * time.Hour

	// DefaultCapacity bounds the sample buffer. When full, the oldest
	// samples are dropped so trailing-window queries stay accurate.
	DefaultCapacity = 100_000
)

const (
	RiskNormal   = "normal"
	RiskElevated = "elevated"
)

// Aggregate is the dashboard view over all retained samples.
type Aggregate struct {
	TotalConfessions    int           `json:"totalConfessions"`
	AverageLength       float64       `json:"averageLength"`
	TimeDistribution    map[int]int64 `json:"timeDistribution"`
	WeekdayDistribution map[int]int64 `json:"weekdayDistribution"`
}

// CrisisAlert is a frequency-only heuristic; it never looks at content.
type CrisisAlert struct {
	RiskLevel string `json:"riskLevel"`
	Frequency int    `json:"frequency"`
	Message   string `json:"message"`
}

// Aggregator holds an append-only buffer of anonymized samples. Samples
// carry no confession id, so nothing here changes when a confession is
// deleted.
type Aggregator struct {
	mu       sync.RWMutex
	samples  []models.MetricsSample
	capacity int
	now      func() time.Time
}

func NewAggregator(capacity int) *Aggregator {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends a sample. On capacity the oldest sample is dropped.
func (a *Aggregator) Record(sample models.MetricsSample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.samples) >= a.capacity {
		a.samples = a.samples[1:]
	}
	a.samples = append(a.samples, sample)
}

// Aggregate folds over all retained samples. AverageLength is 0 when no
// samples exist.
func (a *Aggregator) Aggregate() Aggregate {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agg := Aggregate{
		TotalConfessions:    len(a.samples),
		TimeDistribution:    make(map[int]int64),
		WeekdayDistribution: make(map[int]int64),
	}

	var totalLength int64
	for _, s := range a.samples {
		totalLength += int64(s.TextLength)
		agg.TimeDistribution[s.HourOfDay]++
		agg.WeekdayDistribution[s.DayOfWeek]++
	}

	if len(a.samples) > 0 {
		agg.AverageLength = float64(totalLength) / float64(len(a.samples))
	}
	return agg
}

// RecentFrequency counts samples with a timestamp in [now-window, now].
func (a *Aggregator) RecentFrequency(window time.Duration) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cutoff := a.now().Add(-window)
	count := 0
	for _, s := range a.samples {
		if !s.Timestamp.Before(cutoff) {
			count++
		}
	}
	return count
}

// CrisisLevel reports elevated iff more than CrisisThreshold samples were
// recorded in the trailing CrisisWindow.
func (a *Aggregator) CrisisLevel() CrisisAlert {
	freq := a.RecentFrequency(CrisisWindow)

	alert := CrisisAlert{
		RiskLevel: RiskNormal,
		Frequency: freq,
		Message:   "Activity within normal parameters",
	}
	if freq > CrisisThreshold {
		alert.RiskLevel = RiskElevated
		alert.Message = "Elevated activity detected in the past 24 hours"
	}
	return alert
}
