package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (RIDE) de una factura electrónica.
// Solo se permite generar el RIDE si la factura ya tiene clave de acceso (es
// decir, no está en DRAFT ni falló antes de generar el XML).
type PDFUseCase struct {
	invoiceRepo    repository.InvoiceRepository
	enterpriseRepo repository.EnterpriseRepository
	clientRepo     repository.ClientRepository
	generator      InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	enterpriseRepo repository.EnterpriseRepository,
	clientRepo repository.ClientRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:    invoiceRepo,
		enterpriseRepo: enterpriseRepo,
		clientRepo:     clientRepo,
		generator:      generator,
	}
}

// DownloadInvoicePDF recupera todos los datos de la factura, verifica que ya
// tiene clave de acceso y genera el RIDE.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la factura no pertenece a la empresa del token.
//   - domain.ErrInvalidInput     si la factura está en DRAFT (aún sin clave de acceso).
func (uc *PDFUseCase) DownloadInvoicePDF(
	ctx context.Context,
	enterpriseID, invoiceID string,
) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.EnterpriseID != enterpriseID {
		return nil, "", domain.ErrForbidden
	}

	// ── 2. Validar que ya fue procesada (tiene al menos clave de acceso) ──────
	if inv.SRIStatus == entity.SRIStatusDraft || inv.AccessKey == "" {
		return nil, "", fmt.Errorf("%w: la factura está en estado %s, espere a que sea procesada antes de descargar el RIDE",
			domain.ErrInvalidInput, inv.SRIStatus)
	}

	// ── 3. Cargar empresa ─────────────────────────────────────────────────────
	enterprise, err := uc.enterpriseRepo.GetByID(ctx, enterpriseID)
	if err != nil || enterprise == nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}

	// ── 4. Cargar cliente ─────────────────────────────────────────────────────
	client, err := uc.clientRepo.GetByID(ctx, inv.ClientID)
	if err != nil || client == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}

	// ── 5. Cargar detalles ────────────────────────────────────────────────────
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener detalles: %w", err)
	}

	// ── 6. Generar RIDE ───────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.Generate(inv, enterprise, client, details)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", inv.NumeroCompleto())
	return pdfBytes, filename, nil
}
