package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/repository"
	appErrors "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/errors"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/export"
)

// PlanExportFormat enumerates supported export renderings.
type PlanExportFormat string

const (
	PlanExportFormatMarkdown PlanExportFormat = "markdown"
	PlanExportFormatCSV      PlanExportFormat = "csv"
	PlanExportFormatPDF      PlanExportFormat = "pdf"
)

// PlanExport is a rendered plan document ready to send to the client.
type PlanExport struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Payload     []byte `json:"payload"`
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	CacheTTL time.Duration
}

// ExportService renders stored study plans into downloadable documents.
type ExportService struct {
	plans    studyPlanRepository
	items    planItemRepository
	cache    planCache
	metrics  cacheObserver
	csv      csvRenderer
	pdf      titledRenderer
	markdown titledRenderer
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(plans studyPlanRepository, items planItemRepository, cache planCache, metrics cacheObserver, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &ExportService{
		plans:    plans,
		items:    items,
		cache:    cache,
		metrics:  metrics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		markdown: export.NewMarkdownExporter(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Render produces the requested document for a stored plan. Rendered payloads
// are cached per plan and format.
func (s *ExportService) Render(ctx context.Context, planID string, format PlanExportFormat) (*PlanExport, error) {
	if planID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	switch format {
	case PlanExportFormatMarkdown, PlanExportFormatCSV, PlanExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	cacheKey := repository.PlanExportKey(planID, string(format))
	if s.cache != nil {
		var cached PlanExport
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCacheLookup(true)
			return &cached, nil
		} else if errors.Is(err, appErrors.ErrCacheMiss) {
			s.recordCacheLookup(false)
		} else {
			s.logger.Warn("export cache read failed", zap.Error(err))
		}
	}

	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plan")
	}
	items, err := s.items.ListByPlan(ctx, planID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plan items")
	}

	dataset := buildPlanDataset(items)
	title := fmt.Sprintf("Study Plan %s v%d (%s to %s)",
		plan.StudentID,
		plan.Version,
		plan.PeriodStart.Format("2006-01-02"),
		plan.PeriodEnd.Format("2006-01-02"),
	)

	var payload []byte
	var contentType, extension string
	switch format {
	case PlanExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType, extension = "text/csv", "csv"
	case PlanExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType, extension = "application/pdf", "pdf"
	case PlanExportFormatMarkdown:
		payload, err = s.markdown.Render(dataset, title)
		contentType, extension = "text/markdown", "md"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render plan export")
	}

	result := &PlanExport{
		Filename:    buildExportFilename(plan, extension),
		ContentType: contentType,
		Payload:     payload,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("export cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

func (s *ExportService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func buildPlanDataset(items []models.PlanItem) export.Dataset {
	headers := []string{"Date", "Seq", "Time", "Content", "Range", "Block", "Cycle Day", "Day Type"}
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"Date":      item.PlanDate.Format("2006-01-02"),
			"Seq":       fmt.Sprintf("%d", item.Sequence),
			"Time":      fmt.Sprintf("%s-%s", item.StartTime, item.EndTime),
			"Content":   item.ContentID,
			"Range":     fmt.Sprintf("%d-%d", item.RangeStart, item.RangeEnd-1),
			"Block":     fmt.Sprintf("%d", item.BlockIndex),
			"Cycle Day": fmt.Sprintf("%d", item.CycleDay),
			"Day Type":  item.DateType,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func buildExportFilename(plan *models.StudyPlan, extension string) string {
	student := sanitizeFilename(plan.StudentID)
	return fmt.Sprintf("study_plan_%s_v%d_%s.%s", student, plan.Version, plan.PeriodStart.Format("20060102"), extension)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
