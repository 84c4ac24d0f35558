package models

import (
	"strings"
	"time"
)

// CriterionOrder states whether a lower or higher raw value earns the better
// sub-score.
type CriterionOrder string

const (
	OrderAsc  CriterionOrder = "asc"
	OrderDesc CriterionOrder = "desc"
)

// ParseCriterionOrder normalises an order string.
func ParseCriterionOrder(raw string) (CriterionOrder, bool) {
	switch CriterionOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderAsc:
		return OrderAsc, true
	case OrderDesc:
		return OrderDesc, true
	}
	return "", false
}

// Application attribute fields a merit criterion may evaluate.
const (
	FieldEntranceScore  = "entrance_score"
	FieldInterviewScore = "interview_score"
	FieldPreviousGPA    = "previous_gpa"
	FieldDistanceKM     = "distance_km"
)

// MeritCriterion is one weighted, directional scoring dimension.
type MeritCriterion struct {
	ID       string         `db:"id" json:"id"`
	ConfigID string         `db:"config_id" json:"config_id"`
	Field    string         `db:"field" json:"field"`
	Weight   float64        `db:"weight" json:"weight"`
	Order    CriterionOrder `db:"sort_order" json:"order"`
	Position int            `db:"position" json:"position"`
}

// MeritConfiguration groups the criteria used to build one merit list. The
// weights of its criteria must sum to exactly 100.
type MeritConfiguration struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Criteria  []MeritCriterion `json:"criteria"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// Application is an admission candidate with the numeric attributes criteria
// evaluate.
type Application struct {
	ID             string    `db:"id" json:"id"`
	ApplicantName  string    `db:"applicant_name" json:"applicant_name"`
	EntranceScore  float64   `db:"entrance_score" json:"entrance_score"`
	InterviewScore float64   `db:"interview_score" json:"interview_score"`
	PreviousGPA    float64   `db:"previous_gpa" json:"previous_gpa"`
	DistanceKM     float64   `db:"distance_km" json:"distance_km"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// FieldValue resolves a criterion field against the application.
func (a Application) FieldValue(field string) (float64, bool) {
	switch field {
	case FieldEntranceScore:
		return a.EntranceScore, true
	case FieldInterviewScore:
		return a.InterviewScore, true
	case FieldPreviousGPA:
		return a.PreviousGPA, true
	case FieldDistanceKM:
		return a.DistanceKM, true
	}
	return 0, false
}

// MeritEntry is one ranked row of a generated merit list.
type MeritEntry struct {
	ID             string  `db:"id" json:"id"`
	MeritListID    string  `db:"merit_list_id" json:"merit_list_id"`
	ApplicationID  string  `db:"application_id" json:"application_id"`
	ApplicantName  string  `db:"applicant_name" json:"applicant_name"`
	CompositeScore float64 `db:"composite_score" json:"composite_score"`
	Rank           int     `db:"rank" json:"rank"`
}

// MeritList is a persisted merit list snapshot.
type MeritList struct {
	ID          string       `db:"id" json:"id"`
	ConfigID    string       `db:"config_id" json:"config_id"`
	Name        string       `db:"name" json:"name"`
	GeneratedAt time.Time    `db:"generated_at" json:"generated_at"`
	Entries     []MeritEntry `json:"entries"`
}
