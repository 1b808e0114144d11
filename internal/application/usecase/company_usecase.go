package usecase

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// Nombre con el que se guarda el certificado subido dentro de CertDir.
const uploadedCertName = "emisor.p12"

// IssuerRuntime parte del pipeline de emisión que cambia cuando cambia la configuración.
type IssuerRuntime interface {
	Profile() entity.IssuerProfile
	SetProfile(entity.IssuerProfile)
	SetSigner(pkgsifen.Signer)
	SignatureMode() pkgsifen.SignatureMode
}

// CompanyConfig opciones del caso de uso.
type CompanyConfig struct {
	CertDir string
	// SignerOnUpload construye el firmador a usar después de subir un certificado.
	// Nil cuando el certificado viene de archivo por configuración y la subida solo se guarda.
	SignerOnUpload func() pkgsifen.Signer
}

// CompanyUseCase configuración de la empresa emisora y su certificado.
type CompanyUseCase struct {
	repo    repository.CompanyRepository
	runtime IssuerRuntime
	cfg     CompanyConfig
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, runtime IssuerRuntime, cfg CompanyConfig) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, runtime: runtime, cfg: cfg}
}

// Get devuelve la configuración actual; sin fila guardada responde con los datos del pipeline.
func (uc *CompanyUseCase) Get(ctx context.Context) (*dto.CompanyResponse, error) {
	company, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtener empresa: %w", err)
	}
	if company == nil {
		return &dto.CompanyResponse{SignatureMode: string(uc.runtime.SignatureMode())}, nil
	}
	return uc.toResponse(company), nil
}

// Update guarda razón social, RUC y dirección y los aplica a las emisiones siguientes.
func (uc *CompanyUseCase) Update(ctx context.Context, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	ruc := strings.TrimSpace(in.RUC)
	if _, err := pkgsifen.ParseRUC(ruc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	company := &entity.Company{
		Name:      strings.TrimSpace(in.Name),
		RUC:       ruc,
		Address:   strings.TrimSpace(in.Address),
		UpdatedAt: time.Now(),
	}
	if err := uc.repo.SaveSettings(ctx, company); err != nil {
		return nil, fmt.Errorf("guardar empresa: %w", err)
	}
	current := uc.runtime.Profile()
	profile := company.Profile()
	profile.Establishment = current.Establishment
	profile.ExpeditionPoint = current.ExpeditionPoint
	uc.runtime.SetProfile(profile)

	saved, err := uc.repo.Get(ctx)
	if err != nil || saved == nil {
		return uc.toResponse(company), nil
	}
	return uc.toResponse(saved), nil
}

// UploadCertificate valida el .p12/.pfx con su contraseña, lo guarda en CertDir y
// registra ruta y contraseña. Un archivo que no abre devuelve domain.ErrInvalidCredential.
func (uc *CompanyUseCase) UploadCertificate(ctx context.Context, filename string, data []byte, password string) (*dto.CertificateUploadResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".p12" && ext != ".pfx" {
		return nil, fmt.Errorf("%w: el certificado debe ser .p12 o .pfx", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}

	tlsCert, err := signer.LoadKeyStore(signer.KeyStore{Data: data, Password: password, Format: signer.FormatPKCS12})
	if err != nil {
		return nil, err
	}
	if _, ok := tlsCert.PrivateKey.(*rsa.PrivateKey); !ok {
		return nil, fmt.Errorf("%w: la clave del certificado no es RSA", domain.ErrInvalidCredential)
	}
	leaf, err := x509.ParseCertificate(tlsCert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: certificado: %w", domain.ErrInvalidCredential, err)
	}

	if err := os.MkdirAll(uc.cfg.CertDir, 0o700); err != nil {
		return nil, fmt.Errorf("crear carpeta de certificados: %w", err)
	}
	path := filepath.Join(uc.cfg.CertDir, uploadedCertName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("guardar certificado: %w", err)
	}
	if err := uc.repo.SaveCertificate(ctx, path, password); err != nil {
		return nil, fmt.Errorf("registrar certificado: %w", err)
	}
	if uc.cfg.SignerOnUpload != nil {
		uc.runtime.SetSigner(uc.cfg.SignerOnUpload())
	}

	return &dto.CertificateUploadResponse{
		Subject:       leaf.Subject.String(),
		NotAfter:      leaf.NotAfter,
		SignatureMode: string(uc.runtime.SignatureMode()),
	}, nil
}

func (uc *CompanyUseCase) toResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		Name:           c.Name,
		RUC:            c.RUC,
		Address:        c.Address,
		HasCertificate: c.CertificatePath != "",
		SignatureMode:  string(uc.runtime.SignatureMode()),
		UpdatedAt:      c.UpdatedAt,
	}
}
