package domain

// RateTier tells callers whether rates came from the live provider or the
// static fallback table.
type RateTier string

const (
	RateTierLive     RateTier = "live"
	RateTierFallback RateTier = "fallback"
)

// RateTable is a set of currency rates relative to Base.
type RateTable struct {
	Rates map[string]float64 `json:"rates"`
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Tier  RateTier           `json:"tier"`
}
