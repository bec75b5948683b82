package planner

import (
	"fmt"
	"time"
)

// ExclusionType classifies calendar exclusions.
type ExclusionType string

const (
	ExclusionTypeHoliday           ExclusionType = "holiday"
	ExclusionTypePersonal          ExclusionType = "personal"
	ExclusionTypeDesignatedHoliday ExclusionType = "designated_holiday"
	ExclusionTypeOther             ExclusionType = "other"
)

// Exclusion removes a date from normal scheduling.
type Exclusion struct {
	Date   time.Time
	Type   ExclusionType
	Reason string
}

// AcademySchedule is a recurring weekly external commitment. TravelTime is a
// buffer in minutes applied before and after the window.
type AcademySchedule struct {
	DayOfWeek  int
	StartTime  string
	EndTime    string
	Subject    string
	TravelTime int
}

// SubjectType drives distribution rules per subject.
type SubjectType string

const (
	SubjectTypeStrategy SubjectType = "strategy"
	SubjectTypeWeakness SubjectType = "weakness"
)

// DistributionStrategy governs how a content's amount spreads over its days.
type DistributionStrategy string

// DistributionEven spreads each content's remaining amount proportionally
// across its remaining eligible study days.
const DistributionEven DistributionStrategy = "even"

// Settings carries the validated request parameters the engine needs.
type Settings struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	StudyDays   int
	ReviewDays  int

	Strategy    DistributionStrategy
	WeeklyDays  map[SubjectType]int
	CyclePolicy CyclePolicy

	// SelfStudyOnExcluded keeps excluded days' blocks available for optional
	// self-study allocation instead of zeroing them out.
	SelfStudyOnExcluded bool

	// MinimumBlockMinutes is the smallest slice of time a content placement
	// may occupy.
	MinimumBlockMinutes int
}

// Context is the immutable scheduling input consumed by the allocation engine.
type Context struct {
	Contents         []ContentInfo
	Blocks           []TimeBlock
	Exclusions       []Exclusion
	AcademySchedules []AcademySchedule
	SubjectTypes     map[string]SubjectType
	Settings         Settings

	exclusionsByDate map[string]Exclusion
	blocksByDay      map[int][]TimeBlock
	academiesByDay   map[int][]AcademySchedule
}

// NewContext assembles the scheduling context. The only structural check at
// this layer is a non-empty content list; block and range invariants are
// enforced where those values are produced.
func NewContext(
	contents []ContentInfo,
	blocks []TimeBlock,
	exclusions []Exclusion,
	academies []AcademySchedule,
	subjectTypes map[string]SubjectType,
	settings Settings,
) (*Context, error) {
	if len(contents) == 0 {
		return nil, fmt.Errorf("scheduling requires at least one content item")
	}
	if settings.Strategy == "" {
		settings.Strategy = DistributionEven
	}
	if settings.CyclePolicy == "" {
		settings.CyclePolicy = CyclePolicyConsume
	}
	if settings.MinimumBlockMinutes <= 0 {
		settings.MinimumBlockMinutes = 30
	}
	if subjectTypes == nil {
		subjectTypes = map[string]SubjectType{}
	}

	ctx := &Context{
		Contents:         contents,
		Blocks:           blocks,
		Exclusions:       exclusions,
		AcademySchedules: academies,
		SubjectTypes:     subjectTypes,
		Settings:         settings,
		exclusionsByDate: make(map[string]Exclusion, len(exclusions)),
		blocksByDay:      make(map[int][]TimeBlock, 7),
		academiesByDay:   make(map[int][]AcademySchedule),
	}
	for _, excl := range exclusions {
		ctx.exclusionsByDate[dateKey(excl.Date)] = excl
	}
	for _, block := range blocks {
		ctx.blocksByDay[block.DayOfWeek] = append(ctx.blocksByDay[block.DayOfWeek], block)
	}
	for _, academy := range academies {
		ctx.academiesByDay[academy.DayOfWeek] = append(ctx.academiesByDay[academy.DayOfWeek], academy)
	}
	return ctx, nil
}

// ExclusionOn returns the exclusion covering the date, if any.
func (c *Context) ExclusionOn(date time.Time) (Exclusion, bool) {
	excl, ok := c.exclusionsByDate[dateKey(date)]
	return excl, ok
}

// BlocksFor returns the configured blocks for a weekday.
func (c *Context) BlocksFor(dayOfWeek int) []TimeBlock {
	return c.blocksByDay[dayOfWeek]
}

// AcademiesFor returns academy commitments for a weekday.
func (c *Context) AcademiesFor(dayOfWeek int) []AcademySchedule {
	return c.academiesByDay[dayOfWeek]
}

// PeriodDays returns the number of calendar days in the period, inclusive.
func (c *Context) PeriodDays() int {
	days := int(c.Settings.PeriodEnd.Sub(c.Settings.PeriodStart).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// SubjectTypeOf resolves the configured type for a subject, defaulting to
// weakness when unset.
func (c *Context) SubjectTypeOf(subject string) SubjectType {
	if t, ok := c.SubjectTypes[subject]; ok {
		return t
	}
	return SubjectTypeWeakness
}
