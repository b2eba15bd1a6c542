package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/api/dto"
	"github.com/spec-kit/expedition-service/internal/auth"
	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/service"
)

// PickupsHandler exposes pickup and timeline/occurrence endpoints.
type PickupsHandler struct {
	pickups *service.PickupService
}

// NewPickupsHandler constructs handler.
func NewPickupsHandler(pickups *service.PickupService) *PickupsHandler {
	return &PickupsHandler{pickups: pickups}
}

// Create handles POST /api/v1/pickups.
func (h *PickupsHandler) Create(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.PickupCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	actorID := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actorID = principal.Operator.ID
	}

	pickup, err := h.pickups.CreatePickup(c.Context(), ws.ID, actorID, service.PickupCreateInput{
		Code:        req.Code,
		CarrierName: req.CarrierName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": pickupResponse(pickup)})
}

// List handles GET /api/v1/pickups.
func (h *PickupsHandler) List(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	pickups, err := h.pickups.ListPickups(c.Context(), ws.ID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}

	out := make([]dto.PickupResponse, 0, len(pickups))
	for i := range pickups {
		out = append(out, pickupResponse(&pickups[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /api/v1/pickups/:id with timeline and occurrences.
func (h *PickupsHandler) Get(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	pickup, entries, occurrences, err := h.pickups.GetPickup(c.Context(), ws.ID, c.Params("id"))
	if err != nil {
		return err
	}

	timeline := make([]dto.TimelineEntryResponse, 0, len(entries))
	for i := range entries {
		timeline = append(timeline, timelineResponse(&entries[i]))
	}
	occs := make([]dto.OccurrenceResponse, 0, len(occurrences))
	for i := range occurrences {
		occs = append(occs, occurrenceResponse(&occurrences[i]))
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"pickup":      pickupResponse(pickup),
		"timeline":    timeline,
		"occurrences": occs,
	}})
}

// UpdateStatus handles PUT /api/v1/pickups/:id/status.
func (h *PickupsHandler) UpdateStatus(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.PickupStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	pickup, err := h.pickups.UpdatePickupStatus(c.Context(), ws.ID, c.Params("id"), domain.PickupStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pickupResponse(pickup)})
}

// Delete handles DELETE /api/v1/pickups/:id.
func (h *PickupsHandler) Delete(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}
	if err := h.pickups.DeletePickup(c.Context(), ws.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/v1/pickups (ADMIN only, enforced twice: at the
// route and in the service).
func (h *PickupsHandler) DeleteAll(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	deleted, err := h.pickups.DeleteAllPickups(c.Context(), principal.Operator, ws.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}

// AddTimelineEntry handles POST /api/v1/pickups/:id/timeline.
func (h *PickupsHandler) AddTimelineEntry(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.TimelineEntryCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	entry, err := h.pickups.AddTimelineEntry(c.Context(), ws.ID, c.Params("id"), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": timelineResponse(entry)})
}

// CloseTimelineEntry handles POST /api/v1/pickups/:id/timeline/:entryId/close.
func (h *PickupsHandler) CloseTimelineEntry(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var closedBy *string
	if principal, ok := auth.PrincipalFromContext(c); ok {
		email := principal.Operator.Email
		closedBy = &email
	}

	entry, err := h.pickups.CloseTimelineEntry(c.Context(), ws.ID, c.Params("id"), c.Params("entryId"), closedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timelineResponse(entry)})
}

// AddOccurrence handles POST /api/v1/pickups/:id/occurrences.
func (h *PickupsHandler) AddOccurrence(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var req dto.OccurrenceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	occurrence, err := h.pickups.AddOccurrence(c.Context(), ws.ID, c.Params("id"), req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": occurrenceResponse(occurrence)})
}

// ResolveOccurrence handles POST /api/v1/pickups/:id/occurrences/:occurrenceId/resolve.
func (h *PickupsHandler) ResolveOccurrence(c *fiber.Ctx) error {
	ws, ok := WorkspaceFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusInternalServerError, "workspace not resolved")
	}

	var resolvedBy *string
	if principal, ok := auth.PrincipalFromContext(c); ok {
		email := principal.Operator.Email
		resolvedBy = &email
	}

	occurrence, err := h.pickups.ResolveOccurrence(c.Context(), ws.ID, c.Params("id"), c.Params("occurrenceId"), resolvedBy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": occurrenceResponse(occurrence)})
}

func pickupResponse(p *domain.Pickup) dto.PickupResponse {
	return dto.PickupResponse{
		ID:          p.ID,
		Code:        p.Code,
		CarrierName: p.CarrierName,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func timelineResponse(e *domain.TimelineEntry) dto.TimelineEntryResponse {
	return dto.TimelineEntryResponse{
		ID:          e.ID,
		Description: e.Description,
		Status:      string(e.Status),
		ClosedAt:    e.ClosedAt,
		ClosedBy:    e.ClosedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func occurrenceResponse(o *domain.Occurrence) dto.OccurrenceResponse {
	return dto.OccurrenceResponse{
		ID:          o.ID,
		Description: o.Description,
		Status:      string(o.Status),
		ResolvedAt:  o.ResolvedAt,
		ResolvedBy:  o.ResolvedBy,
		CreatedAt:   o.CreatedAt,
	}
}
