package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/personal-finance-ledger/internal/api_gateway/middleware"
	"github.com/personal-finance-ledger/internal/api_gateway/service"
)

// EntryHandler handles HTTP requests for entry operations
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// Create records a new income or expense
func (h *EntryHandler) Create(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fields, err := req.Fields()
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	created, err := h.entryService.Create(c.Request.Context(), middleware.GetOwnerID(c), fields)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, toEntryResponse(created))
}

// GetByID returns one of the caller's entries, 404 if absent or not theirs
func (h *EntryHandler) GetByID(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	found, err := h.entryService.Get(c.Request.Context(), middleware.GetOwnerID(c), id)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, toEntryResponse(found))
}

// List returns the caller's entries filtered by the query parameters
func (h *EntryHandler) List(c *gin.Context) {
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

	entries, err := h.entryService.List(c.Request.Context(), middleware.GetOwnerID(c), filter)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondWithList(c, toEntryResponses(entries), len(entries))
}

// Update replaces every mutable field of an entry
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fields, err := req.Fields()
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	updated, err := h.entryService.Update(c.Request.Context(), middleware.GetOwnerID(c), id, fields)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, toEntryResponse(updated))
}

// Delete removes an entry permanently
func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := h.entryID(c)
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), middleware.GetOwnerID(c), id); err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

func (h *EntryHandler) entryID(c *gin.Context) (int64, bool) {
	idParam := c.Param("id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid entry ID")
		return 0, false
	}
	return id, true
}
