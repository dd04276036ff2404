package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/courier-pro/internal/application/dto"
	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
	domainsri "github.com/jhoicas/courier-pro/internal/domain/sri"
)

// CreateInvoiceUseCase crea una factura de servicios courier a partir de
// encomiendas recibidas y/o líneas de servicio sueltas. La asignación del
// secuencial, la cabecera, los detalles y el marcado de encomiendas como
// facturadas ocurren en una sola transacción.
type CreateInvoiceUseCase struct {
	txRunner       TxRunner
	invoiceRepo    repository.InvoiceRepository
	enterpriseRepo repository.EnterpriseRepository
	clientRepo     repository.ClientRepository
	packageRepo    repository.PackageRepository
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	enterpriseRepo repository.EnterpriseRepository,
	clientRepo repository.ClientRepository,
	packageRepo repository.PackageRepository,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		txRunner:       txRunner,
		invoiceRepo:    invoiceRepo,
		enterpriseRepo: enterpriseRepo,
		clientRepo:     clientRepo,
		packageRepo:    packageRepo,
	}
}

// CreateInvoice valida, calcula totales con IVA 15 % y persiste la factura en
// estado DRAFT. La emisión al SRI es un paso aparte (SRIOrchestrator).
func (uc *CreateInvoiceUseCase) CreateInvoice(ctx context.Context, enterpriseID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ClientID == "" || (len(in.PackageIDs) == 0 && len(in.Items) == 0) {
		return nil, domain.ErrInvalidInput
	}

	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.EnterpriseID != enterpriseID {
		return nil, domain.ErrForbidden
	}

	enterprise, err := uc.enterpriseRepo.GetByID(ctx, enterpriseID)
	if err != nil || enterprise == nil {
		return nil, domain.ErrNotFound
	}

	// Encomiendas a facturar: deben ser de la empresa y no estar facturadas
	packages := make([]*entity.Package, 0, len(in.PackageIDs))
	for _, id := range in.PackageIDs {
		pkg, err := uc.packageRepo.GetByID(ctx, id)
		if err != nil || pkg == nil {
			return nil, domain.ErrNotFound
		}
		if pkg.EnterpriseID != enterpriseID {
			return nil, domain.ErrForbidden
		}
		if pkg.Status == entity.PackageStatusInvoiced {
			return nil, domain.ErrConflict
		}
		packages = append(packages, pkg)
	}

	now := time.Now()
	invoiceID := uuid.New().String()

	// Detalles: flete de cada encomienda + líneas de servicio sueltas
	var details []*entity.InvoiceDetail
	var subtotal decimal.Decimal
	for _, pkg := range packages {
		line := &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			PackageID:   pkg.ID,
			Description: "Flete guía " + pkg.GuideNumber + ": " + pkg.Description,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   pkg.FreightPrice,
			Discount:    decimal.Zero,
			Subtotal:    pkg.FreightPrice,
		}
		details = append(details, line)
		subtotal = subtotal.Add(line.Subtotal)
	}
	for _, item := range in.Items {
		if item.Description == "" || !item.Quantity.GreaterThan(decimal.Zero) || item.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		lineSubtotal := item.Quantity.Mul(item.UnitPrice).Round(2)
		line := &entity.InvoiceDetail{
			ID:          uuid.New().String(),
			InvoiceID:   invoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    decimal.Zero,
			Subtotal:    lineSubtotal,
		}
		details = append(details, line)
		subtotal = subtotal.Add(lineSubtotal)
	}

	taxAmount := subtotal.Mul(domainsri.IVARate).Round(2)
	inv := &entity.Invoice{
		ID:              invoiceID,
		EnterpriseID:    enterpriseID,
		ClientID:        in.ClientID,
		AgencyID:        in.AgencyID,
		Establecimiento: enterprise.Establecimiento,
		PuntoEmision:    enterprise.PuntoEmision,
		Date:            now,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        subtotal,
		Discount:        decimal.Zero,
		TaxAmount:       taxAmount,
		GrandTotal:      subtotal.Add(taxAmount),
		SRIStatus:       entity.SRIStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := domainsri.ValidateInvoice(inv, details, client.IdentType, client.IdentNumber); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunInTx(ctx, func(txCtx context.Context) error {
		secuencial, err := uc.invoiceRepo.NextSecuencial(txCtx, enterpriseID, inv.Establecimiento, inv.PuntoEmision)
		if err != nil {
			return err
		}
		inv.Secuencial = secuencial

		if err := uc.invoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}
		for _, detail := range details {
			if err := uc.invoiceRepo.CreateDetail(txCtx, detail); err != nil {
				return err
			}
		}
		for _, pkg := range packages {
			if err := uc.packageRepo.UpdateStatus(txCtx, pkg.ID, entity.PackageStatusInvoiced); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toInvoiceResponse(inv, client.Name, details), nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, enterpriseID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.EnterpriseID != enterpriseID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	clientName := ""
	if client, _ := uc.clientRepo.GetByID(ctx, inv.ClientID); client != nil {
		clientName = client.Name
	}
	return toInvoiceResponse(inv, clientName, details), nil
}

// GetStatus devuelve el estado SRI de la factura para polling del frontend.
func (uc *CreateInvoiceUseCase) GetStatus(ctx context.Context, enterpriseID, id string) (*dto.InvoiceSRIStatusDTO, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil || inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.EnterpriseID != enterpriseID {
		return nil, domain.ErrForbidden
	}
	return &dto.InvoiceSRIStatusDTO{
		ID:         inv.ID,
		SRIStatus:  inv.SRIStatus,
		AccessKey:  inv.AccessKey,
		AuthNumber: inv.AuthNumber,
		Errors:     inv.SRIErrors,
	}, nil
}

// ListInvoices lista las facturas de la empresa paginadas.
func (uc *CreateInvoiceUseCase) ListInvoices(ctx context.Context, enterpriseID string, page dto.PageRequest) ([]*dto.InvoiceResponse, error) {
	page.DefaultPage()
	invoices, err := uc.invoiceRepo.ListByEnterprise(ctx, enterpriseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv, "", nil))
	}
	return out, nil
}

func toInvoiceResponse(inv *entity.Invoice, clientName string, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		EnterpriseID:   inv.EnterpriseID,
		ClientID:       inv.ClientID,
		ClientName:     clientName,
		NumeroCompleto: inv.NumeroCompleto(),
		Date:           inv.Date.Format("2006-01-02"),
		PaymentMethod:  inv.PaymentMethod,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		GrandTotal:     inv.GrandTotal,
		SRIStatus:      inv.SRIStatus,
		AccessKey:      inv.AccessKey,
		AuthNumber:     inv.AuthNumber,
		SRIErrors:      inv.SRIErrors,
		Details:        make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	if inv.AuthDate != nil {
		resp.AuthDate = inv.AuthDate.Format(time.RFC3339)
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:          d.ID,
			PackageID:   d.PackageID,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Subtotal:    d.Subtotal,
		})
	}
	return resp
}
