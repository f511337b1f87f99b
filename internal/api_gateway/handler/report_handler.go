package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
)

// ReportHandler serves the aggregate views
type ReportHandler struct {
	reportService service.ReportService
	logger        *slog.Logger
}

func NewReportHandler(logger *slog.Logger, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// Summary returns income, expense and balance over the filtered entries
func (h *ReportHandler) Summary(c *gin.Context) {
	var query FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}
	filter, err := query.Filter()
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	summary, err := h.reportService.Summarize(c.Request.Context(), middleware.GetOwnerID(c), filter)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, toSummaryResponse(summary))
}

// Categories returns totals grouped by category and kind, largest first
func (h *ReportHandler) Categories(c *gin.Context) {
	var query FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters")
		return
	}
	filter, err := query.Filter()
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	groups, err := h.reportService.ByCategory(c.Request.Context(), middleware.GetOwnerID(c), filter)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondWithList(c, toCategoryResponses(groups), len(groups))
}
