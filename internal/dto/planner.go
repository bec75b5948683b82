package dto

import "github.com/eduatalk23-lgtm/eduatalk-sub016/internal/planner"

// TimeWindowRequest is an "HH:mm" interval supplied by the client.
type TimeWindowRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// ExclusionRequest removes a date from normal scheduling.
type ExclusionRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Type   string `json:"type" validate:"required,oneof=holiday personal designated_holiday other"`
	Reason string `json:"reason"`
}

// AcademyScheduleRequest is a recurring weekly external commitment.
type AcademyScheduleRequest struct {
	DayOfWeek  int    `json:"dayOfWeek" validate:"min=0,max=6"`
	Start      string `json:"start" validate:"required"`
	End        string `json:"end" validate:"required"`
	Subject    string `json:"subject"`
	TravelTime int    `json:"travelTime" validate:"min=0"`
}

// SubjectSettingRequest maps a subject onto a distribution type with an
// optional weekly-day quota.
type SubjectSettingRequest struct {
	Subject    string `json:"subject" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=strategy weakness"`
	WeeklyDays int    `json:"weeklyDays" validate:"min=0,max=7"`
}

// GeneratePlanRequest instructs the planner to build a study-plan proposal.
type GeneratePlanRequest struct {
	StudentID            string                   `json:"studentId" validate:"required"`
	PeriodStart          string                   `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd            string                   `json:"periodEnd" validate:"required,datetime=2006-01-02"`
	StudyHours           TimeWindowRequest        `json:"studyHours" validate:"required"`
	Lunch                *TimeWindowRequest       `json:"lunch,omitempty"`
	StudyDays            int                      `json:"studyDays" validate:"required,min=1,max=30"`
	ReviewDays           int                      `json:"reviewDays" validate:"min=0,max=30"`
	DistributionStrategy string                   `json:"distributionStrategy" validate:"omitempty,oneof=even"`
	CyclePolicy          string                   `json:"cyclePolicy" validate:"omitempty,oneof=consume skip"`
	SelfStudyOnExcluded  bool                     `json:"selfStudyOnExcluded"`
	ContentIDs           []string                 `json:"contentIds" validate:"required,min=1,dive,required"`
	Exclusions           []ExclusionRequest       `json:"exclusions" validate:"omitempty,dive"`
	AcademySchedules     []AcademyScheduleRequest `json:"academySchedules" validate:"omitempty,dive"`
	SubjectSettings      []SubjectSettingRequest  `json:"subjectSettings" validate:"omitempty,dive"`
}

// PlanItemResponse is one scheduled content placement.
type PlanItemResponse struct {
	PlanDate   string `json:"planDate"`
	ContentID  string `json:"contentId"`
	RangeStart int    `json:"rangeStart"`
	RangeEnd   int    `json:"rangeEnd"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	BlockIndex int    `json:"blockIndex"`
	CycleDay   int    `json:"cycleDay"`
	DateType   string `json:"dateType"`
	Sequence   int    `json:"sequence"`
}

// PlanStats summarises a generation run.
type PlanStats struct {
	TotalDays     int  `json:"totalDays"`
	PlannedItems  int  `json:"plannedItems"`
	AutoAdjusted  int  `json:"autoAdjusted"`
	WarningCount  int  `json:"warningCount"`
	IsValid       bool `json:"isValid"`
	TotalContents int  `json:"totalContents"`
}

// GeneratePlanResponse returns the built proposal.
type GeneratePlanResponse struct {
	ProposalID string             `json:"proposalId"`
	Items      []PlanItemResponse `json:"items"`
	Warnings   []planner.Warning  `json:"warnings"`
	Stats      PlanStats          `json:"stats"`
}

// SavePlanRequest persists a proposal as a study plan.
type SavePlanRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Publish    bool   `json:"publish"`
}

// StudyPlanQuery filters plan summaries by student.
type StudyPlanQuery struct {
	StudentID string `form:"studentId" json:"studentId"`
}
