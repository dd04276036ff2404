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

var _ repository.AgencyRepository = (*AgencyRepo)(nil)

// AgencyRepo implementación de AgencyRepository (usable con pool o tx).
type AgencyRepo struct {
	db Querier
}

// NewAgencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAgencyRepository(db Querier) *AgencyRepo {
	return &AgencyRepo{db: db}
}

// Create persiste una nueva agencia.
func (r *AgencyRepo) Create(ctx context.Context, a *entity.Agency) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO agencies (id, enterprise_id, name, city, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		a.ID, a.EnterpriseID, a.Name, a.City, a.Address, a.Phone, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert agency: %w", err)
	}
	return nil
}

// GetByID obtiene una agencia por ID.
func (r *AgencyRepo) GetByID(ctx context.Context, id string) (*entity.Agency, error) {
	query := `
		SELECT id, enterprise_id, name, city, address, phone, created_at, updated_at
		FROM agencies WHERE id = $1`
	var a entity.Agency
	err := qFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&a.ID, &a.EnterpriseID, &a.Name, &a.City, &a.Address, &a.Phone, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agency: %w", err)
	}
	return &a, nil
}

// List lista las agencias de la empresa.
func (r *AgencyRepo) List(ctx context.Context, enterpriseID string) ([]*entity.Agency, error) {
	query := `
		SELECT id, enterprise_id, name, city, address, phone, created_at, updated_at
		FROM agencies WHERE enterprise_id = $1 ORDER BY name`
	rows, err := qFrom(ctx, r.db).Query(ctx, query, enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Agency
	for rows.Next() {
		var a entity.Agency
		if err := rows.Scan(&a.ID, &a.EnterpriseID, &a.Name, &a.City, &a.Address, &a.Phone, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agency: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
