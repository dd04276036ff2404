package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/application/usecase"
	"github.com/jhoicas/courier-pro/internal/domain"
)

// AgencyHandler maneja las peticiones HTTP de agencias (protegido).
type AgencyHandler struct {
	uc *usecase.AgencyUseCase
}

// NewAgencyHandler construye el handler.
func NewAgencyHandler(uc *usecase.AgencyUseCase) *AgencyHandler {
	return &AgencyHandler{uc: uc}
}

// Create POST /api/agencies
func (h *AgencyHandler) Create(c *fiber.Ctx) error {
	enterpriseID := GetEnterpriseID(c)
	if enterpriseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateAgencyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), enterpriseID, in)
	if err != nil {
		if err == domain.ErrInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name y city son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/agencies/:id
func (h *AgencyHandler) GetByID(c *fiber.Ctx) error {
	enterpriseID := GetEnterpriseID(c)
	if enterpriseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), enterpriseID, c.Params("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "agencia no encontrada"})
		}
		if err == domain.ErrForbidden {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List GET /api/agencies
func (h *AgencyHandler) List(c *fiber.Ctx) error {
	enterpriseID := GetEnterpriseID(c)
	if enterpriseID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.uc.List(c.Context(), enterpriseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}
