package planner

import (
	"fmt"
	"time"
)

// FailureKind discriminates allocation failure variants.
type FailureKind string

const (
	FailureNoStudyDays       FailureKind = "no_study_days"
	FailureInsufficientTime  FailureKind = "insufficient_time"
	FailureContentAllocation FailureKind = "content_allocation_failed"
	FailureInsufficientSlots FailureKind = "insufficient_slots"
)

// FailureReason is a structured, non-fatal diagnostic explaining why
// scheduling could not fully succeed. Implementations are the only members of
// this sealed set, so handlers can switch exhaustively.
type FailureReason interface {
	Kind() FailureKind
	Message() string
	failureReason()
}

// NoStudyDaysFailure reports a period with no schedulable study time at all.
type NoStudyDaysFailure struct {
	TotalDays    int
	ExcludedDays int
}

func (f NoStudyDaysFailure) Kind() FailureKind { return FailureNoStudyDays }
func (f NoStudyDaysFailure) Message() string {
	return fmt.Sprintf("no study days available: %d of %d days in the period are excluded or have no study time", f.ExcludedDays, f.TotalDays)
}
func (NoStudyDaysFailure) failureReason() {}

// InsufficientTimeFailure reports a date whose available minutes fall short of
// what the outstanding content needs.
type InsufficientTimeFailure struct {
	Date             time.Time
	RequiredMinutes  int
	AvailableMinutes int
}

func (f InsufficientTimeFailure) Kind() FailureKind { return FailureInsufficientTime }
func (f InsufficientTimeFailure) Message() string {
	return fmt.Sprintf("%s: %d minutes available but %d required", f.Date.Format(dateLayout), f.AvailableMinutes, f.RequiredMinutes)
}
func (InsufficientTimeFailure) failureReason() {}

// ContentAllocationFailure reports a content item whose amount could not be
// fully placed before the period ended.
type ContentAllocationFailure struct {
	ContentID       string
	Subject         string
	RemainingAmount int
}

func (f ContentAllocationFailure) Kind() FailureKind { return FailureContentAllocation }
func (f ContentAllocationFailure) Message() string {
	return fmt.Sprintf("content %s (%s) could not be fully scheduled: %d units remain", f.ContentID, f.Subject, f.RemainingAmount)
}
func (ContentAllocationFailure) failureReason() {}

// InsufficientSlotsFailure reports a date with more content pieces to place
// than available blocks.
type InsufficientSlotsFailure struct {
	Date   time.Time
	Pieces int
	Slots  int
}

func (f InsufficientSlotsFailure) Kind() FailureKind { return FailureInsufficientSlots }
func (f InsufficientSlotsFailure) Message() string {
	return fmt.Sprintf("%s: %d content pieces but only %d blocks, deferring the rest", f.Date.Format(dateLayout), f.Pieces, f.Slots)
}
func (InsufficientSlotsFailure) failureReason() {}
