package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/dto"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/models"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/internal/service"
	appErrors "github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/errors"
	"github.com/eduatalk23-lgtm/eduatalk-sub016/pkg/response"
)

const maxContentSelection = 128

type planPreviewResponse struct {
	Mode     string                    `json:"mode"`
	Proposal *dto.GeneratePlanResponse `json:"proposal"`
}

type planGenerator interface {
	Generate(ctx context.Context, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
	Save(ctx context.Context, req dto.SavePlanRequest) (string, error)
	List(ctx context.Context, query dto.StudyPlanQuery) ([]models.StudyPlan, error)
	GetItems(ctx context.Context, id string) ([]models.PlanItem, error)
	Delete(ctx context.Context, id string) error
}

type planExporter interface {
	Render(ctx context.Context, planID string, format service.PlanExportFormat) (*service.PlanExport, error)
}

// PlanHandler exposes study-plan endpoints.
type PlanHandler struct {
	service  planGenerator
	exporter planExporter
}

// NewPlanHandler constructs the handler. A nil exporter disables the export
// endpoint.
func NewPlanHandler(svc *service.PlanGeneratorService, exporter *service.ExportService) *PlanHandler {
	h := &PlanHandler{service: svc}
	if exporter != nil {
		h.exporter = exporter
	}
	return h
}

// Generate godoc
// @Summary Generate a study-plan proposal
// @Description Builds a preview proposal without persisting. The proposal id stays valid until its TTL expires or it is saved.
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanRequest true "Generate plan payload"
// @Success 200 {object} response.Envelope
// @Router /plans/generate [post]
func (h *PlanHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	if len(req.ContentIDs) > maxContentSelection {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "contentIds exceeds supported limit"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := planPreviewResponse{
		Mode:     "preview",
		Proposal: result,
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Save godoc
// @Summary Persist a generated proposal as a versioned study plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param payload body dto.SavePlanRequest true "Save plan payload"
// @Success 201 {object} response.Envelope
// @Router /plans/save [post]
func (h *PlanHandler) Save(c *gin.Context) {
	var req dto.SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"planId": id})
}

// List godoc
// @Summary List study-plan versions for a student
// @Tags Plans
// @Produce json
// @Param studentId query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	query := dto.StudyPlanQuery{StudentID: c.Query("studentId")}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Items godoc
// @Summary Get scheduled rows of a stored plan
// @Tags Plans
// @Produce json
// @Param id path string true "Study plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/items [get]
func (h *PlanHandler) Items(c *gin.Context) {
	items, err := h.service.GetItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Delete godoc
// @Summary Delete a draft study plan
// @Tags Plans
// @Param id path string true "Study plan ID"
// @Success 204
// @Router /plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a stored plan as markdown, CSV or PDF
// @Tags Plans
// @Produce octet-stream
// @Param id path string true "Study plan ID"
// @Param format query string false "Export format" Enums(markdown, csv, pdf) default(markdown)
// @Success 200 {file} binary
// @Router /plans/{id}/export [get]
func (h *PlanHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service unavailable"))
		return
	}
	format := service.PlanExportFormat(c.DefaultQuery("format", string(service.PlanExportFormatMarkdown)))
	result, err := h.exporter.Render(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
