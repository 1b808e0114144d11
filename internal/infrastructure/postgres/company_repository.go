package postgres

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository y sirve de almacén de credenciales.
var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ signer.CredentialStore       = (*CompanyRepo)(nil)
)

// CompanyRepo configuración de la empresa emisora (fila única id = 1).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para la empresa.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Get devuelve (nil, nil) si todavía no se guardó la configuración.
func (r *CompanyRepo) Get(ctx context.Context) (*entity.Company, error) {
	query := `
		SELECT name, ruc, address, COALESCE(certificate_path, ''), COALESCE(certificate_password, ''), updated_at
		FROM company WHERE id = 1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query).Scan(
		&c.Name, &c.RUC, &c.Address, &c.CertificatePath, &c.CertificatePassword, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// SaveSettings guarda razón social, RUC y dirección sin tocar el certificado.
func (r *CompanyRepo) SaveSettings(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO company (id, name, ruc, address, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, ruc = EXCLUDED.ruc, address = EXCLUDED.address, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, company.Name, company.RUC, company.Address); err != nil {
		return fmt.Errorf("save company: %w", err)
	}
	return nil
}

// SaveCertificate registra la ruta del .p12 subido y su contraseña.
func (r *CompanyRepo) SaveCertificate(ctx context.Context, path, password string) error {
	query := `
		INSERT INTO company (id, certificate_path, certificate_password, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET certificate_path = EXCLUDED.certificate_path,
		    certificate_password = EXCLUDED.certificate_password,
		    updated_at = now()`
	if _, err := r.q.Exec(ctx, query, nullIfEmpty(path), password); err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}

// Fetch implementa signer.CredentialStore: lee el certificado registrado en cada llamada.
func (r *CompanyRepo) Fetch(ctx context.Context) (signer.KeyStore, error) {
	c, err := r.Get(ctx)
	if err != nil {
		return signer.KeyStore{}, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}
	if c == nil || c.CertificatePath == "" {
		return signer.KeyStore{}, fmt.Errorf("%w: no hay certificado registrado", domain.ErrSigningFailed)
	}
	data, err := os.ReadFile(c.CertificatePath)
	if err != nil {
		return signer.KeyStore{}, fmt.Errorf("%w: leer certificado: %w", domain.ErrSigningFailed, err)
	}
	return signer.KeyStore{
		Data:     data,
		Password: c.CertificatePassword,
		Format:   signer.FormatFromPath(c.CertificatePath),
	}, nil
}
