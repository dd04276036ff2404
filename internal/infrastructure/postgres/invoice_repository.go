package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	db Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(db Querier) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

const invoiceColumns = `id, enterprise_id, client_id, agency_id, establecimiento, punto_emision,
	       secuencial, date, payment_method, subtotal, discount, tax_amount, grand_total,
	       sri_status, access_key, xml_path, signed_xml_path, auth_number, auth_date, sri_errors,
	       created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, enterprise_id, client_id, agency_id, establecimiento, punto_emision, secuencial, date, payment_method, subtotal, discount, tax_amount, grand_total, sri_status, access_key, xml_path, signed_xml_path, auth_number, auth_date, sri_errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		inv.ID, inv.EnterpriseID, inv.ClientID, nullIfEmpty(inv.AgencyID),
		inv.Establecimiento, inv.PuntoEmision, inv.Secuencial, inv.Date, inv.PaymentMethod,
		inv.Subtotal, inv.Discount, inv.TaxAmount, inv.GrandTotal,
		inv.SRIStatus, nullIfEmpty(inv.AccessKey), nullIfEmpty(inv.XMLPath), nullIfEmpty(inv.SignedXMLPath),
		nullIfEmpty(inv.AuthNumber), inv.AuthDate, nullIfEmpty(inv.SRIErrors),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("el número de factura ya existe: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, d *entity.InvoiceDetail) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_details (id, invoice_id, package_id, description, quantity, unit_price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		d.ID, d.InvoiceID, nullIfEmpty(d.PackageID), d.Description,
		d.Quantity, d.UnitPrice, d.Discount, d.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice detail: %w", err)
	}
	return nil
}

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoiceRow(qFrom(ctx, r.db).QueryRow(ctx, query, id), "get invoice")
}

// GetByAccessKey obtiene una factura por clave de acceso.
func (r *InvoiceRepo) GetByAccessKey(ctx context.Context, accessKey string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE access_key = $1`
	return scanInvoiceRow(qFrom(ctx, r.db).QueryRow(ctx, query, accessKey), "get invoice by access_key")
}

// GetDetailsByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetDetailsByInvoiceID(ctx context.Context, invoiceID string) ([]*entity.InvoiceDetail, error) {
	query := `
		SELECT id, invoice_id, package_id, description, quantity, unit_price, discount, subtotal
		FROM invoice_details WHERE invoice_id = $1 ORDER BY id`
	rows, err := qFrom(ctx, r.db).Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice details: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceDetail
	for rows.Next() {
		var d entity.InvoiceDetail
		var packageID *string
		if err := rows.Scan(&d.ID, &d.InvoiceID, &packageID, &d.Description,
			&d.Quantity, &d.UnitPrice, &d.Discount, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		d.PackageID = derefStr(packageID)
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Update actualiza los campos mutables de la factura (estado SRI, clave, rutas, autorización).
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET sri_status      = $2,
		    access_key      = COALESCE($3, access_key),
		    xml_path        = COALESCE($4, xml_path),
		    signed_xml_path = COALESCE($5, signed_xml_path),
		    auth_number     = COALESCE($6, auth_number),
		    auth_date       = COALESCE($7, auth_date),
		    sri_errors      = COALESCE($8, sri_errors),
		    updated_at      = $9
		WHERE id = $1`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		inv.ID,
		inv.SRIStatus,
		nullIfEmpty(inv.AccessKey),
		nullIfEmpty(inv.XMLPath),
		nullIfEmpty(inv.SignedXMLPath),
		nullIfEmpty(inv.AuthNumber),
		inv.AuthDate,
		nullIfEmpty(inv.SRIErrors),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// NextSecuencial reserva y devuelve el siguiente secuencial de la serie.
// El UPSERT sobre la fila de la serie serializa las reservas concurrentes:
// dos facturas de la misma serie nunca obtienen el mismo secuencial.
func (r *InvoiceRepo) NextSecuencial(ctx context.Context, enterpriseID, estab, ptoEmi string) (int64, error) {
	query := `
		INSERT INTO invoice_sequences (enterprise_id, establecimiento, punto_emision, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (enterprise_id, establecimiento, punto_emision)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	err := qFrom(ctx, r.db).QueryRow(ctx, query, enterpriseID, estab, ptoEmi).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next secuencial: %w", err)
	}
	return n, nil
}

// ListByEnterprise lista facturas de la empresa con paginación, más recientes primero.
func (r *InvoiceRepo) ListByEnterprise(ctx context.Context, enterpriseID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE enterprise_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := qFrom(ctx, r.db).Query(ctx, query, enterpriseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func scanInvoiceRow(row pgx.Row, op string) (*entity.Invoice, error) {
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var agencyID, accessKey, xmlPath, signedXMLPath, authNumber, sriErrors *string
	err := row.Scan(
		&inv.ID, &inv.EnterpriseID, &inv.ClientID, &agencyID,
		&inv.Establecimiento, &inv.PuntoEmision, &inv.Secuencial, &inv.Date, &inv.PaymentMethod,
		&inv.Subtotal, &inv.Discount, &inv.TaxAmount, &inv.GrandTotal,
		&inv.SRIStatus, &accessKey, &xmlPath, &signedXMLPath,
		&authNumber, &inv.AuthDate, &sriErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.AgencyID = derefStr(agencyID)
	inv.AccessKey = derefStr(accessKey)
	inv.XMLPath = derefStr(xmlPath)
	inv.SignedXMLPath = derefStr(signedXMLPath)
	inv.AuthNumber = derefStr(authNumber)
	inv.SRIErrors = derefStr(sriErrors)
	return &inv, nil
}
