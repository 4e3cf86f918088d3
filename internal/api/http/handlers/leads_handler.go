package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/auth"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// LeadsHandler exposes the lead CRUD, listing and stats endpoints.
type LeadsHandler struct {
	leads *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{leads: leadService}
}

// List handles GET /leads.
func (h *LeadsHandler) List(c *fiber.Ctx) error {
	filters, err := parseFilters(c.Query("filters"))
	if err != nil {
		return err
	}

	leads, pagination, err := h.leads.List(c.Context(), service.ListInput{
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 20),
		Search:    c.Query("search"),
		Filters:   filters,
		SortBy:    c.Query("sortBy", "createdAt"),
		SortOrder: c.Query("sortOrder", "desc"),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"leads":      dto.NewLeadResponses(leads),
		"pagination": pagination,
	})
}

// Stats handles GET /leads/stats/overview.
func (h *LeadsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.leads.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// Get handles GET /leads/:id.
func (h *LeadsHandler) Get(c *fiber.Ctx) error {
	lead, err := h.leads.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLeadResponse(lead))
}

// Create handles POST /leads.
func (h *LeadsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.LeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewDomainError("VALIDATION_FAILED", "invalid request body", http.StatusBadRequest, nil)
	}

	lead, err := h.leads.Create(c.Context(), principal.UserID, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewLeadResponse(lead))
}

// Update handles PUT /leads/:id.
func (h *LeadsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.LeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewDomainError("VALIDATION_FAILED", "invalid request body", http.StatusBadRequest, nil)
	}

	lead, err := h.leads.Update(c.Context(), principal.UserID, c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewLeadResponse(lead))
}

// Delete handles DELETE /leads/:id.
func (h *LeadsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	if err := h.leads.Delete(c.Context(), principal.UserID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "lead deleted"})
}

// parseFilters decodes the filters query parameter. An absent parameter
// is fine; undecodable JSON is the one filter error surfaced to callers.
func parseFilters(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var filters map[string]any
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil, apperrors.NewInvalidFilterSyntax("filters must be a JSON object")
	}
	return filters, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
