package models

import "time"

// Confession is an encrypted payload held until it expires or is deleted.
// Ciphertext and Nonce are opaque to the server: they are produced and
// consumed client-side and pass through verbatim.
type Confession struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Ciphertext string    `json:"-"`
	Nonce      string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	ReadCount  int       `json:"read_count"`
}

// MetricsSample is the anonymized metadata recorded once per submission.
// It deliberately carries no confession id, so deleting a confession can
// never invalidate or be traced through the aggregate statistics.
type MetricsSample struct {
	Timestamp  time.Time
	TextLength int
	HourOfDay  int
	DayOfWeek  int
}

// NewMetricsSample derives a sample from submission metadata alone.
func NewMetricsSample(textLength int, ts time.Time) MetricsSample {
	return MetricsSample{
		Timestamp:  ts,
		TextLength: textLength,
		HourOfDay:  ts.Hour(),
		DayOfWeek:  int(ts.Weekday()),
	}
}
