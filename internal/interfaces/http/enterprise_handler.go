package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/application/usecase"
	"github.com/jhoicas/courier-pro/internal/domain"
)

// EnterpriseHandler maneja el alta y consulta de empresas emisoras (tenants).
type EnterpriseHandler struct {
	uc *usecase.EnterpriseUseCase
}

// NewEnterpriseHandler construye el handler.
func NewEnterpriseHandler(uc *usecase.EnterpriseUseCase) *EnterpriseHandler {
	return &EnterpriseHandler{uc: uc}
}

// Create POST /api/enterprises
func (h *EnterpriseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEnterpriseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.RUC == "" || in.RazonSocial == "" || in.DirMatriz == "" || in.Establecimiento == "" || in.PuntoEmision == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ruc, razon_social, dir_matriz, establecimiento y punto_emision son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if err == domain.ErrDuplicate {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe una empresa con ese RUC"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/enterprises/:id
func (h *EnterpriseHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa no encontrada"})
	}
	return c.JSON(out)
}

// List GET /api/enterprises
func (h *EnterpriseHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(list)
}
