package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/courier-pro/internal/domain"
	"github.com/jhoicas/courier-pro/internal/domain/entity"
	"github.com/jhoicas/courier-pro/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	db Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(db Querier) *ClientRepo {
	return &ClientRepo{db: db}
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (id, enterprise_id, name, ident_type, ident_number, address, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		c.ID, c.EnterpriseID, c.Name, c.IdentType, c.IdentNumber,
		c.Address, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	query := `
		SELECT id, enterprise_id, name, ident_type, ident_number, address, email, phone, created_at, updated_at
		FROM clients WHERE id = $1`
	var c entity.Client
	err := qFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&c.ID, &c.EnterpriseID, &c.Name, &c.IdentType, &c.IdentNumber,
		&c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// GetByIdentNumber obtiene un cliente por empresa y número de identificación.
func (r *ClientRepo) GetByIdentNumber(ctx context.Context, enterpriseID, identNumber string) (*entity.Client, error) {
	query := `
		SELECT id, enterprise_id, name, ident_type, ident_number, address, email, phone, created_at, updated_at
		FROM clients WHERE enterprise_id = $1 AND ident_number = $2`
	var c entity.Client
	err := qFrom(ctx, r.db).QueryRow(ctx, query, enterpriseID, identNumber).Scan(
		&c.ID, &c.EnterpriseID, &c.Name, &c.IdentType, &c.IdentNumber,
		&c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by ident_number: %w", err)
	}
	return &c, nil
}

// List lista los clientes de la empresa.
func (r *ClientRepo) List(ctx context.Context, enterpriseID string) ([]*entity.Client, error) {
	query := `
		SELECT id, enterprise_id, name, ident_type, ident_number, address, email, phone, created_at, updated_at
		FROM clients WHERE enterprise_id = $1 ORDER BY name`
	rows, err := qFrom(ctx, r.db).Query(ctx, query, enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Client
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(
			&c.ID, &c.EnterpriseID, &c.Name, &c.IdentType, &c.IdentNumber,
			&c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
