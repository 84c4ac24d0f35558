package models

import "time"

// Exam identifies one assessment for a class in a term.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TermID    string    `db:"term_id" json:"term_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Name      string    `db:"name" json:"name"`
	HeldAt    time.Time `db:"held_at" json:"held_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ExamResult stores a student's score for an exam. Score is nullable: absent
// students carry no score and receive no rank.
type ExamResult struct {
	ID          string    `db:"id" json:"id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	Score       *float64  `db:"score" json:"score"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
}

// RankedResult is an exam result with its dense competition rank.
type RankedResult struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// ExamRanking is the ranked view of one exam's results.
type ExamRanking struct {
	ExamID  string         `json:"exam_id"`
	Results []RankedResult `json:"results"`
	Skipped int            `json:"skipped"`
}
