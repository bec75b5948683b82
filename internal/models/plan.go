package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// StudyPlanStatus represents lifecycle phases for generated study plans.
type StudyPlanStatus string

const (
	StudyPlanStatusDraft     StudyPlanStatus = "DRAFT"
	StudyPlanStatusPublished StudyPlanStatus = "PUBLISHED"
	StudyPlanStatusArchived  StudyPlanStatus = "ARCHIVED"
)

// StudyPlan is a versioned plan header for a student and period.
type StudyPlan struct {
	ID          string          `db:"id" json:"id"`
	StudentID   string          `db:"student_id" json:"student_id"`
	PeriodStart time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd   time.Time       `db:"period_end" json:"period_end"`
	Version     int             `db:"version" json:"version"`
	Status      StudyPlanStatus `db:"status" json:"status"`
	Meta        types.JSONText  `db:"meta" json:"meta"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// PlanItem is one persisted scheduled-plan row inside a study plan.
type PlanItem struct {
	ID          string    `db:"id" json:"id"`
	StudyPlanID string    `db:"study_plan_id" json:"study_plan_id"`
	PlanDate    time.Time `db:"plan_date" json:"plan_date"`
	ContentID   string    `db:"content_id" json:"content_id"`
	RangeStart  int       `db:"range_start" json:"range_start"`
	RangeEnd    int       `db:"range_end" json:"range_end"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	BlockIndex  int       `db:"block_index" json:"block_index"`
	CycleDay    int       `db:"cycle_day" json:"cycle_day"`
	DateType    string    `db:"date_type" json:"date_type"`
	Sequence    int       `db:"sequence" json:"sequence"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
