package models

// ScoredEntity is a ranking input. A nil Score excludes the entity from
// ranking entirely.
type ScoredEntity struct {
	ID    string   `json:"id"`
	Score *float64 `json:"score"`
}

// RankedEntity is a ranking output using dense competition ranks: tied scores
// share a rank, and the next distinct score resumes at 1 + the number of
// entities strictly ahead.
type RankedEntity struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
