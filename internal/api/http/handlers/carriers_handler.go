package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/expedition-service/internal/api/dto"
	"github.com/spec-kit/expedition-service/internal/domain"
	"github.com/spec-kit/expedition-service/internal/service"
)

// CarriersHandler exposes the carrier registry and name resolution.
type CarriersHandler struct {
	carriers *service.CarrierService
}

// NewCarriersHandler constructs handler.
func NewCarriersHandler(carriers *service.CarrierService) *CarriersHandler {
	return &CarriersHandler{carriers: carriers}
}

// Create handles POST /api/v1/carriers.
func (h *CarriersHandler) Create(c *fiber.Ctx) error {
	var req dto.CarrierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	carrier, err := h.carriers.CreateCarrier(c.Context(), service.CarrierInput{
		Nome:        req.Nome,
		NomeDisplay: req.NomeDisplay,
		Aliases:     req.Aliases,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": carrierResponse(carrier)})
}

// Update handles PUT /api/v1/carriers/:id.
func (h *CarriersHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid carrier id")
	}

	var req dto.CarrierRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	carrier, err := h.carriers.UpdateCarrier(c.Context(), id, service.CarrierInput{
		Nome:        req.Nome,
		NomeDisplay: req.NomeDisplay,
		Aliases:     req.Aliases,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": carrierResponse(carrier)})
}

// List handles GET /api/v1/carriers.
func (h *CarriersHandler) List(c *fiber.Ctx) error {
	carriers, err := h.carriers.ListCarriers(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.CarrierResponse, 0, len(carriers))
	for i := range carriers {
		out = append(out, carrierResponse(&carriers[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Resolve handles GET /api/v1/carriers/resolve?name=.
func (h *CarriersHandler) Resolve(c *fiber.Ctx) error {
	resolution, err := h.carriers.Resolve(c.Context(), c.Query("name"))
	if err != nil {
		return err
	}

	resp := dto.CarrierResolveResponse{DisplayName: resolution.DisplayName}
	if resolution.Carrier != nil {
		carrier := carrierResponse(resolution.Carrier)
		resp.Carrier = &carrier
	}
	return c.JSON(fiber.Map{"data": resp})
}

func carrierResponse(carrier *domain.Carrier) dto.CarrierResponse {
	return dto.CarrierResponse{
		ID:          carrier.ID,
		Nome:        carrier.Nome,
		NomeDisplay: carrier.NomeDisplay,
		Aliases:     carrier.Aliases,
		IsActive:    carrier.IsActive,
	}
}
