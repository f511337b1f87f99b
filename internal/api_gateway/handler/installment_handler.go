package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
	"github.com/personal-finance-ledger/internal/domain/installment"
)

// InstallmentHandler handles installment plan submissions
type InstallmentHandler struct {
	installmentService service.InstallmentService
	logger             *slog.Logger
}

func NewInstallmentHandler(logger *slog.Logger, installmentService service.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{
		installmentService: installmentService,
		logger:             logger,
	}
}

// Create expands the plan and persists every installment before responding
func (h *InstallmentHandler) Create(c *gin.Context) {
	plan, ok := h.bindPlan(c)
	if !ok {
		return
	}

	created, err := h.installmentService.CreateSeries(c.Request.Context(), middleware.GetOwnerID(c), plan)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, toEntryResponses(created))
}

// Submit publishes the plan for the installment processor and answers 202
func (h *InstallmentHandler) Submit(c *gin.Context) {
	plan, ok := h.bindPlan(c)
	if !ok {
		return
	}

	request, err := h.installmentService.Submit(c.Request.Context(), middleware.GetOwnerID(c), plan, middleware.GetCorrelationID(c))
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondAccepted(c, InstallmentAcceptedResponse{
		RequestID: request.RequestID.String(),
		Status:    "PENDING",
	})
}

func (h *InstallmentHandler) bindPlan(c *gin.Context) (installment.Plan, bool) {
	var req InstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return installment.Plan{}, false
	}

	plan, err := req.Plan()
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return installment.Plan{}, false
	}
	return plan, true
}
