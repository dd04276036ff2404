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

var _ repository.EnterpriseRepository = (*EnterpriseRepo)(nil)

// EnterpriseRepo implementación de EnterpriseRepository (usable con pool o tx).
type EnterpriseRepo struct {
	db Querier
}

// NewEnterpriseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEnterpriseRepository(db Querier) *EnterpriseRepo {
	return &EnterpriseRepo{db: db}
}

const enterpriseColumns = `id, ruc, razon_social, nombre_comercial, dir_matriz,
	       establecimiento, punto_emision, ambiente, cert_path, cert_password,
	       phone, email, status, created_at, updated_at`

// Create persiste una nueva empresa (tenant).
func (r *EnterpriseRepo) Create(ctx context.Context, e *entity.Enterprise) error {
	query := `
		INSERT INTO enterprises (id, ruc, razon_social, nombre_comercial, dir_matriz, establecimiento, punto_emision, ambiente, cert_path, cert_password, phone, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		e.ID, e.RUC, e.RazonSocial, e.NombreComercial, e.DirMatriz,
		e.Establecimiento, e.PuntoEmision, e.Ambiente, nullIfEmpty(e.CertPath), nullIfEmpty(e.CertPassword),
		e.Phone, e.Email, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert enterprise: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *EnterpriseRepo) GetByID(ctx context.Context, id string) (*entity.Enterprise, error) {
	query := `SELECT ` + enterpriseColumns + ` FROM enterprises WHERE id = $1`
	return r.scanOne(qFrom(ctx, r.db).QueryRow(ctx, query, id), "get enterprise")
}

// GetByRUC obtiene una empresa por RUC.
func (r *EnterpriseRepo) GetByRUC(ctx context.Context, ruc string) (*entity.Enterprise, error) {
	query := `SELECT ` + enterpriseColumns + ` FROM enterprises WHERE ruc = $1`
	return r.scanOne(qFrom(ctx, r.db).QueryRow(ctx, query, ruc), "get enterprise by ruc")
}

// Update actualiza los datos mutables de la empresa.
func (r *EnterpriseRepo) Update(ctx context.Context, e *entity.Enterprise) error {
	query := `
		UPDATE enterprises
		SET razon_social = $2, nombre_comercial = $3, dir_matriz = $4,
		    establecimiento = $5, punto_emision = $6, ambiente = $7,
		    cert_path = $8, cert_password = $9, phone = $10, email = $11,
		    status = $12, updated_at = $13
		WHERE id = $1`
	_, err := qFrom(ctx, r.db).Exec(ctx, query,
		e.ID, e.RazonSocial, e.NombreComercial, e.DirMatriz,
		e.Establecimiento, e.PuntoEmision, e.Ambiente,
		nullIfEmpty(e.CertPath), nullIfEmpty(e.CertPassword), e.Phone, e.Email,
		e.Status, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update enterprise: %w", err)
	}
	return nil
}

// List devuelve todas las empresas registradas.
func (r *EnterpriseRepo) List(ctx context.Context) ([]*entity.Enterprise, error) {
	query := `SELECT ` + enterpriseColumns + ` FROM enterprises ORDER BY razon_social`
	rows, err := qFrom(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list enterprises: %w", err)
	}
	defer rows.Close()
	var list []*entity.Enterprise
	for rows.Next() {
		e, err := scanEnterprise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enterprise: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EnterpriseRepo) scanOne(row pgx.Row, op string) (*entity.Enterprise, error) {
	e, err := scanEnterprise(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func scanEnterprise(row pgx.Row) (*entity.Enterprise, error) {
	var e entity.Enterprise
	var certPath, certPassword *string
	err := row.Scan(
		&e.ID, &e.RUC, &e.RazonSocial, &e.NombreComercial, &e.DirMatriz,
		&e.Establecimiento, &e.PuntoEmision, &e.Ambiente, &certPath, &certPassword,
		&e.Phone, &e.Email, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.CertPath = derefStr(certPath)
	e.CertPassword = derefStr(certPassword)
	return &e, nil
}
