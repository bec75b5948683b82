package models

import "time"

// Content is a study material registered for a student. RangeStart and
// RangeEnd are inclusive, as entered by the user.
type Content struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	Title           string    `db:"title" json:"title"`
	ContentType     string    `db:"content_type" json:"content_type"`
	RangeStart      int       `db:"range_start" json:"range_start"`
	RangeEnd        int       `db:"range_end" json:"range_end"`
	Subject         string    `db:"subject" json:"subject"`
	SubjectCategory string    `db:"subject_category" json:"subject_category"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
