package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
	appErrors "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/errors"
)

func newExportServiceFixture() *ExportService {
	return newExportServiceFixtureWith(nil, nil)
}

func newExportServiceFixtureWith(cache planCache, metrics cacheObserver) *ExportService {
	plans := &studyPlanRepoStub{
		items: []models.StudyPlan{
			{
				ID:          "plan-1",
				StudentID:   "student-1",
				PeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				PeriodEnd:   time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
				Version:     2,
				Status:      models.StudyPlanStatusDraft,
			},
		},
	}
	items := &planItemRepoStub{
		items: map[string][]models.PlanItem{
			"plan-1": {
				{
					StudyPlanID: "plan-1",
					PlanDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
					ContentID:   "book-1",
					RangeStart:  1,
					RangeEnd:    18,
					StartTime:   "09:00",
					EndTime:     "12:00",
					CycleDay:    1,
					DateType:    "study",
					Sequence:    1,
				},
				{
					StudyPlanID: "plan-1",
					PlanDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
					ContentID:   "lecture-1",
					RangeStart:  1,
					RangeEnd:    11,
					StartTime:   "13:00",
					EndTime:     "18:00",
					BlockIndex:  1,
					CycleDay:    1,
					DateType:    "study",
					Sequence:    2,
				},
			},
		},
	}
	return NewExportService(plans, items, cache, metrics, ExportConfig{}, zap.NewNop())
}

func TestExportServiceRenderMarkdown(t *testing.T) {
	svc := newExportServiceFixture()

	result, err := svc.Render(context.Background(), "plan-1", PlanExportFormatMarkdown)
	require.NoError(t, err)

	assert.Equal(t, "text/markdown", result.ContentType)
	assert.Equal(t, "study_plan_student-1_v2_20260302.md", result.Filename)

	text := string(result.Payload)
	assert.Contains(t, text, "# Study Plan student-1 v2 (2026-03-02 to 2026-03-08)")
	assert.Contains(t, text, "| 2026-03-02 | 1 | 09:00-12:00 | book-1 | 1-17 |")
	assert.Contains(t, text, "lecture-1 | 1-10 |")
}

func TestExportServiceRenderCSV(t *testing.T) {
	svc := newExportServiceFixture()

	result, err := svc.Render(context.Background(), "plan-1", PlanExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Seq,Time,Content,Range,Block,Cycle Day,Day Type", lines[0])
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := newExportServiceFixture()

	result, err := svc.Render(context.Background(), "plan-1", PlanExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceRenderRecordsCacheMetrics(t *testing.T) {
	metrics := &metricsRecorderStub{}
	svc := newExportServiceFixtureWith(newPlanCacheStub(), metrics)

	first, err := svc.Render(context.Background(), "plan-1", PlanExportFormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 0, metrics.hits)

	second, err := svc.Render(context.Background(), "plan-1", PlanExportFormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, first.Payload, second.Payload)
}

func TestExportServiceRenderUnknownPlan(t *testing.T) {
	svc := newExportServiceFixture()

	_, err := svc.Render(context.Background(), "plan-404", PlanExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRenderUnsupportedFormat(t *testing.T) {
	svc := newExportServiceFixture()

	_, err := svc.Render(context.Background(), "plan-1", PlanExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
