package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
)

var _ repository.PackageRepository = (*PackageRepo)(nil)

// PackageRepo implementación de PackageRepository (usable con pool o tx).
type PackageRepo struct {
	db Querier
}

// NewPackageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPackageRepository(db Querier) *PackageRepo {
	return &PackageRepo{db: db}
}

const packageColumns = `id, enterprise_id, guide_number, sender_id, receiver_id,
	       origin_agency_id, dest_agency_id, description, weight, declared_value,
	       freight_price, status, received_at, created_at, updated_at`

// Create persiste una nueva encomienda.
func (r *PackageRepo) Create(ctx context.Context, p *entity.Package) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO packages (id, enterprise_id, guide_number, sender_id, receiver_id, origin_agency_id, dest_agency_id, description, weight, declared_value, freight_price, status, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		p.ID, p.EnterpriseID, p.GuideNumber, p.SenderID, p.ReceiverID,
		p.OriginAgencyID, p.DestAgencyID, p.Description, p.Weight, p.DeclaredValue,
		p.FreightPrice, p.Status, p.ReceivedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert package: %w", err)
	}
	return nil
}

// GetByID obtiene una encomienda por ID.
func (r *PackageRepo) GetByID(ctx context.Context, id string) (*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`
	return scanPackageRow(qFrom(ctx, r.db).QueryRow(ctx, query, id), "get package")
}

// GetByGuideNumber obtiene una encomienda por empresa y número de guía.
func (r *PackageRepo) GetByGuideNumber(ctx context.Context, enterpriseID, guideNumber string) (*entity.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE enterprise_id = $1 AND guide_number = $2`
	return scanPackageRow(qFrom(ctx, r.db).QueryRow(ctx, query, enterpriseID, guideNumber), "get package by guide_number")
}

// UpdateStatus cambia el estado de una encomienda.
func (r *PackageRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE packages SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := qFrom(ctx, r.db).Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update package status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByEnterprise lista encomiendas de la empresa con paginación, más recientes primero.
func (r *PackageRepo) ListByEnterprise(ctx context.Context, enterpriseID string, limit, offset int) ([]*entity.Package, error) {
	query := `SELECT ` + packageColumns + `
		FROM packages WHERE enterprise_id = $1
		ORDER BY received_at DESC LIMIT $2 OFFSET $3`
	rows, err := qFrom(ctx, r.db).Query(ctx, query, enterpriseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()
	var list []*entity.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// NextGuideNumber reserva el siguiente número de guía de la agencia y lo
// devuelve rellenado a 9 dígitos. El UPSERT serializa reservas concurrentes.
func (r *PackageRepo) NextGuideNumber(ctx context.Context, enterpriseID, agencyID string) (string, error) {
	query := `
		INSERT INTO guide_sequences (enterprise_id, agency_id, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (enterprise_id, agency_id)
		DO UPDATE SET last_value = guide_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	err := qFrom(ctx, r.db).QueryRow(ctx, query, enterpriseID, agencyID).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("next guide number: %w", err)
	}
	return fmt.Sprintf("%09d", n), nil
}

func scanPackageRow(row pgx.Row, op string) (*entity.Package, error) {
	p, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPackage(row pgx.Row) (*entity.Package, error) {
	var p entity.Package
	err := row.Scan(
		&p.ID, &p.EnterpriseID, &p.GuideNumber, &p.SenderID, &p.ReceiverID,
		&p.OriginAgencyID, &p.DestAgencyID, &p.Description, &p.Weight, &p.DeclaredValue,
		&p.FreightPrice, &p.Status, &p.ReceivedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
