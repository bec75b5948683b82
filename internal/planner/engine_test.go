package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday through Sunday, all inside one ISO week.
var (
	fixturePeriodStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	fixturePeriodEnd   = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
)

type engineFixture struct {
	contents     []ContentInput
	lunch        *Window
	study        Window
	exclusions   []Exclusion
	academies    []AcademySchedule
	subjectTypes map[string]SubjectType
	settings     Settings
}

func newEngineContext(t *testing.T, fx engineFixture) *Context {
	t.Helper()
	if fx.study.Start == "" {
		fx.study = Window{Start: "09:00", End: "18:00"}
	}
	if fx.contents == nil {
		fx.contents = []ContentInput{
			{ContentID: "book-1", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 100, Subject: "math"},
			{ContentID: "lecture-1", ContentType: ContentTypeLecture, RangeStart: 1, RangeEnd: 60, Subject: "english"},
		}
	}
	if fx.settings.PeriodStart.IsZero() {
		fx.settings.PeriodStart = fixturePeriodStart
		fx.settings.PeriodEnd = fixturePeriodEnd
	}
	if fx.settings.StudyDays == 0 {
		fx.settings.StudyDays = 6
		fx.settings.ReviewDays = 1
	}

	contents, err := NormalizeContents(fx.contents)
	require.NoError(t, err)
	blocks, err := BuildWeekBlocks(fx.study, fx.lunch)
	require.NoError(t, err)
	ctx, err := NewContext(contents, blocks, fx.exclusions, fx.academies, fx.subjectTypes, fx.settings)
	require.NoError(t, err)
	return ctx
}

func TestEngineGenerateFullAllocation(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{lunch: &Window{Start: "12:00", End: "13:00"}})

	plans, failures := NewEngine(ctx).Generate()
	assert.Empty(t, failures)
	// 6 study days, 2 contents per day.
	assert.Len(t, plans, 12)

	totals := map[string]int{}
	lastEnd := map[string]int{}
	for _, plan := range plans {
		totals[plan.ContentID] += plan.PlannedEnd - plan.PlannedStart
		if prev, ok := lastEnd[plan.ContentID]; ok {
			assert.Equal(t, prev, plan.PlannedStart, "ranges must be contiguous for %s", plan.ContentID)
		}
		lastEnd[plan.ContentID] = plan.PlannedEnd
		assert.Equal(t, DayTypeStudy, plan.DateType)
	}
	assert.Equal(t, 100, totals["book-1"])
	assert.Equal(t, 60, totals["lecture-1"])
	assert.Equal(t, 101, lastEnd["book-1"])
	assert.Equal(t, 61, lastEnd["lecture-1"])
}

func TestEngineGenerateIsDeterministic(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{lunch: &Window{Start: "12:00", End: "13:00"}})

	first, firstFailures := NewEngine(ctx).Generate()
	second, secondFailures := NewEngine(ctx).Generate()
	assert.Equal(t, first, second)
	assert.Equal(t, firstFailures, secondFailures)
}

func TestEngineSkipsReviewDays(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{lunch: &Window{Start: "12:00", End: "13:00"}})

	plans, _ := NewEngine(ctx).Generate()
	sunday := fixturePeriodEnd
	for _, plan := range plans {
		assert.False(t, plan.PlanDate.Equal(sunday), "review day must not receive new allocation")
	}
}

func TestEngineExcludedDayProducesNoRowsAndNoFailure(t *testing.T) {
	wednesday := fixturePeriodStart.AddDate(0, 0, 2)
	ctx := newEngineContext(t, engineFixture{
		lunch:      &Window{Start: "12:00", End: "13:00"},
		exclusions: []Exclusion{{Date: wednesday, Type: ExclusionTypeHoliday}},
	})

	plans, failures := NewEngine(ctx).Generate()
	for _, plan := range plans {
		assert.False(t, plan.PlanDate.Equal(wednesday))
	}
	for _, failure := range failures {
		assert.NotEqual(t, FailureInsufficientTime, failure.Kind())
	}
}

func TestEngineCyclePolicyConsumeVsSkip(t *testing.T) {
	monday := fixturePeriodStart
	tuesday := monday.AddDate(0, 0, 1)

	cycleNumberOn := func(policy CyclePolicy) int {
		ctx := newEngineContext(t, engineFixture{
			lunch:      &Window{Start: "12:00", End: "13:00"},
			exclusions: []Exclusion{{Date: monday, Type: ExclusionTypePersonal}},
			settings: Settings{
				PeriodStart: fixturePeriodStart,
				PeriodEnd:   fixturePeriodEnd,
				StudyDays:   6,
				ReviewDays:  1,
				CyclePolicy: policy,
			},
		})
		plans, _ := NewEngine(ctx).Generate()
		for _, plan := range plans {
			if plan.PlanDate.Equal(tuesday) {
				return plan.CycleDayNumber
			}
		}
		t.Fatalf("no plan generated for %s", tuesday.Format("2006-01-02"))
		return 0
	}

	// Consume: the excluded Monday used cycle slot 1, Tuesday is slot 2.
	assert.Equal(t, 2, cycleNumberOn(CyclePolicyConsume))
	// Skip: the cycle freezes over the exclusion, Tuesday is slot 1.
	assert.Equal(t, 1, cycleNumberOn(CyclePolicySkip))
}

func TestEngineAcademyScheduleSubtraction(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		lunch: &Window{Start: "12:00", End: "13:00"},
		academies: []AcademySchedule{
			// Monday 13:00-15:00 plus 30 minutes travel each way blocks 12:30-15:30.
			{DayOfWeek: 1, StartTime: "13:00", EndTime: "15:00", Subject: "piano", TravelTime: 30},
		},
	})

	plans, _ := NewEngine(ctx).Generate()
	monday := fixturePeriodStart
	var mondayPlans []ScheduledPlan
	for _, plan := range plans {
		if plan.PlanDate.Equal(monday) {
			mondayPlans = append(mondayPlans, plan)
		}
	}
	require.Len(t, mondayPlans, 2)
	assert.Equal(t, "09:00", mondayPlans[0].StartTime)
	assert.Equal(t, "12:00", mondayPlans[0].EndTime)
	assert.Equal(t, "15:30", mondayPlans[1].StartTime)
	assert.Equal(t, "18:00", mondayPlans[1].EndTime)
}

func TestEngineInteriorConflictSplitsBlock(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		academies: []AcademySchedule{
			{DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00", Subject: "taekwondo"},
		},
	})

	plans, _ := NewEngine(ctx).Generate()
	monday := fixturePeriodStart
	var mondayPlans []ScheduledPlan
	for _, plan := range plans {
		if plan.PlanDate.Equal(monday) {
			mondayPlans = append(mondayPlans, plan)
		}
	}
	// A single 09:00-18:00 block split around the conflict hosts both contents.
	require.Len(t, mondayPlans, 2)
	assert.Equal(t, "12:00", mondayPlans[0].EndTime)
	assert.Equal(t, "13:00", mondayPlans[1].StartTime)
	assert.Equal(t, 0, mondayPlans[0].BlockIndex)
	assert.Equal(t, 0, mondayPlans[1].BlockIndex)
}

func TestEngineInsufficientSlotsDefersContent(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		contents: []ContentInput{
			{ContentID: "a", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 12, Subject: "math"},
			{ContentID: "b", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 12, Subject: "korean"},
			{ContentID: "c", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 12, Subject: "science"},
		},
	})

	plans, failures := NewEngine(ctx).Generate()
	var slotFailures int
	for _, failure := range failures {
		if failure.Kind() == FailureInsufficientSlots {
			slotFailures++
		}
	}
	assert.Greater(t, slotFailures, 0)

	// One block per day means at most one placement per day.
	perDay := map[string]int{}
	for _, plan := range plans {
		perDay[plan.PlanDate.Format("2006-01-02")]++
	}
	for date, count := range perDay {
		assert.Equal(t, 1, count, "date %s", date)
	}
}

func TestEngineInsufficientTime(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		study: Window{Start: "09:00", End: "09:40"},
	})

	_, failures := NewEngine(ctx).Generate()
	var found bool
	for _, failure := range failures {
		if f, ok := failure.(InsufficientTimeFailure); ok {
			found = true
			assert.Equal(t, 60, f.RequiredMinutes)
			assert.Equal(t, 40, f.AvailableMinutes)
		}
	}
	assert.True(t, found, "expected an insufficient_time failure")
}

func TestEngineNoStudyDays(t *testing.T) {
	var exclusions []Exclusion
	for offset := 0; offset < 7; offset++ {
		exclusions = append(exclusions, Exclusion{
			Date: fixturePeriodStart.AddDate(0, 0, offset),
			Type: ExclusionTypeHoliday,
		})
	}
	ctx := newEngineContext(t, engineFixture{exclusions: exclusions})

	plans, failures := NewEngine(ctx).Generate()
	assert.Empty(t, plans)
	require.Len(t, failures, 1)
	failure, ok := failures[0].(NoStudyDaysFailure)
	require.True(t, ok)
	assert.Equal(t, 7, failure.TotalDays)
	assert.Equal(t, 7, failure.ExcludedDays)
	assert.NotEmpty(t, failure.Message())
}

func TestEngineZeroPlansAlwaysCarryAFailure(t *testing.T) {
	// Degraded context: 5 of 7 days excluded leaves fewer available days than
	// the cycle length. Generation must not crash and must explain itself.
	var exclusions []Exclusion
	for offset := 0; offset < 5; offset++ {
		exclusions = append(exclusions, Exclusion{
			Date: fixturePeriodStart.AddDate(0, 0, offset),
			Type: ExclusionTypeDesignatedHoliday,
		})
	}
	ctx := newEngineContext(t, engineFixture{exclusions: exclusions})

	plans, failures := NewEngine(ctx).Generate()
	if len(plans) == 0 {
		assert.NotEmpty(t, failures)
	}
	// Saturday (offset 5) is still a study day with a single block, so the
	// first content lands there and the deferred one is reported.
	var contentFailures int
	for _, failure := range failures {
		if failure.Kind() == FailureContentAllocation {
			contentFailures++
		}
	}
	assert.Equal(t, 1, contentFailures)
}

func TestEngineSelfStudyOnExcludedDays(t *testing.T) {
	saturday := fixturePeriodStart.AddDate(0, 0, 5)
	fx := engineFixture{
		exclusions: []Exclusion{{Date: saturday, Type: ExclusionTypeHoliday}},
		settings: Settings{
			PeriodStart:         fixturePeriodStart,
			PeriodEnd:           fixturePeriodEnd,
			StudyDays:           6,
			ReviewDays:          1,
			SelfStudyOnExcluded: true,
		},
	}
	ctx := newEngineContext(t, fx)

	plans, _ := NewEngine(ctx).Generate()
	var saturdayPlans int
	for _, plan := range plans {
		if plan.PlanDate.Equal(saturday) {
			saturdayPlans++
		}
	}
	assert.Greater(t, saturdayPlans, 0, "self-study keeps excluded day blocks available")
}

func TestEngineCustomContentNeverAllocated(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		contents: []ContentInput{
			{ContentID: "book-1", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 30, Subject: "math"},
			{ContentID: "note-1", ContentType: ContentTypeCustom, RangeStart: 1, RangeEnd: 50, Subject: "memo"},
		},
	})

	plans, failures := NewEngine(ctx).Generate()
	for _, plan := range plans {
		assert.NotEqual(t, "note-1", plan.ContentID)
	}
	for _, failure := range failures {
		if f, ok := failure.(ContentAllocationFailure); ok {
			assert.NotEqual(t, "note-1", f.ContentID)
		}
	}
}

func TestEngineWeeklyQuotaAndStrategyPriority(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		lunch: &Window{Start: "12:00", End: "13:00"},
		contents: []ContentInput{
			{ContentID: "weak-1", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 60, Subject: "english"},
			{ContentID: "strat-1", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 60, Subject: "math"},
		},
		subjectTypes: map[string]SubjectType{"math": SubjectTypeStrategy},
		settings: Settings{
			PeriodStart: fixturePeriodStart,
			PeriodEnd:   fixturePeriodEnd,
			StudyDays:   6,
			ReviewDays:  1,
			WeeklyDays:  map[SubjectType]int{SubjectTypeStrategy: 2},
		},
	})

	plans, failures := NewEngine(ctx).Generate()

	stratDays := map[string]bool{}
	var firstDayOrder []string
	for _, plan := range plans {
		if plan.ContentID == "strat-1" {
			stratDays[plan.PlanDate.Format("2006-01-02")] = true
		}
		if plan.PlanDate.Equal(fixturePeriodStart) {
			firstDayOrder = append(firstDayOrder, plan.ContentID)
		}
	}
	// The period is a single ISO week, so the quota caps strategy content at 2 days.
	assert.Len(t, stratDays, 2)
	// Strategy content claims the first block of the day.
	require.NotEmpty(t, firstDayOrder)
	assert.Equal(t, "strat-1", firstDayOrder[0])

	var stratUnfinished bool
	for _, failure := range failures {
		if f, ok := failure.(ContentAllocationFailure); ok && f.ContentID == "strat-1" {
			stratUnfinished = true
			assert.Greater(t, f.RemainingAmount, 0)
		}
	}
	assert.True(t, stratUnfinished, "quota-capped content cannot finish inside one week")
}

func TestEngineEvenDistributionSpread(t *testing.T) {
	ctx := newEngineContext(t, engineFixture{
		lunch: &Window{Start: "12:00", End: "13:00"},
		contents: []ContentInput{
			{ContentID: "book-1", ContentType: ContentTypeBook, RangeStart: 1, RangeEnd: 60, Subject: "math"},
		},
	})

	plans, failures := NewEngine(ctx).Generate()
	assert.Empty(t, failures)
	require.Len(t, plans, 6)
	for _, plan := range plans {
		assert.Equal(t, 10, plan.PlannedEnd-plan.PlannedStart)
	}
}
