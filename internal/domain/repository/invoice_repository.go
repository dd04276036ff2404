package repository

import (
	"context"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
)

// InvoiceRepository define la persistencia de facturas y sus detalles.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateDetail(ctx context.Context, detail *entity.InvoiceDetail) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*entity.Invoice, error)
	GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error)
	// Update persiste los campos mutables (estado SRI, clave, rutas, autorización).
	Update(ctx context.Context, invoice *entity.Invoice) error
	// NextSecuencial reserva y devuelve el siguiente secuencial para la serie de la empresa.
	NextSecuencial(ctx context.Context, enterpriseID, estab, ptoEmi string) (int64, error)
	ListByEnterprise(ctx context.Context, enterpriseID string, limit, offset int) ([]*entity.Invoice, error)
}
