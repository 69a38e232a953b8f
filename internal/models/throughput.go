package models

// Bucket is the time granularity of throughput points.
type Bucket string

const (
	// BucketHour groups throughput per hour.
	BucketHour Bucket = "hour"
	// BucketDay groups throughput per day.
	BucketDay Bucket = "day"
)

// String returns the wire value of the bucket.
func (b Bucket) String() string {
	return string(b)
}

// Label returns the display name used by the bucket selector.
func (b Bucket) Label() string {
	switch b {
	case BucketDay:
		return "Per day"
	default:
		return "Per hour"
	}
}

// Next toggles between hour and day.
func (b Bucket) Next() Bucket {
	if b == BucketDay {
		return BucketHour
	}
	return BucketDay
}

// OrDefault returns BucketHour for an empty bucket.
func (b Bucket) OrDefault() Bucket {
	if b == "" {
		return BucketHour
	}
	return b
}

// ThroughputPoint is the throughput total of one bucket.
type ThroughputPoint struct {
	TS         Timestamp `json:"ts"`
	Throughput float64   `json:"throughput"`
}

// ThroughputSeries is the response of the throughput endpoint.
type ThroughputSeries struct {
	Points []ThroughputPoint `json:"points"`
}

// Values returns the throughput values in point order.
func (s *ThroughputSeries) Values() []float64 {
	if s == nil {
		return nil
	}
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Throughput
	}
	return values
}

// Labels returns the point timestamps rendered in local time.
func (s *ThroughputSeries) Labels() []string {
	if s == nil {
		return nil
	}
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.TS.Local().Format("2006-01-02 15:04")
	}
	return labels
}

// IsEmpty reports whether the series has no points.
func (s *ThroughputSeries) IsEmpty() bool {
	return s == nil || len(s.Points) == 0
}
