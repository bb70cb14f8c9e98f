package models

// MetricsSnapshot aggregates lightweight service metrics for API consumption.
type MetricsSnapshot struct {
	RequestCount         uint64  `json:"request_count"`
	AvgRequestDurationMs float64 `json:"avg_request_duration_ms"`
	CacheHitRatio        float64 `json:"cache_hit_ratio"`
	DBQueryCount         uint64  `json:"db_query_count"`
	AvgDBQueryDurationMs float64 `json:"avg_db_query_duration_ms"`
	CheckInCount         uint64  `json:"check_in_count"`
	Goroutines           int     `json:"goroutines"`
}
