package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/application/usecase"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	infrasifen "github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer/signertest"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

type memCompanyRepo struct {
	company *entity.Company
}

func (r *memCompanyRepo) Get(context.Context) (*entity.Company, error) {
	if r.company == nil {
		return nil, nil
	}
	c := *r.company
	return &c, nil
}

func (r *memCompanyRepo) SaveSettings(_ context.Context, c *entity.Company) error {
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.Name, r.company.RUC, r.company.Address, r.company.UpdatedAt = c.Name, c.RUC, c.Address, c.UpdatedAt
	return nil
}

func (r *memCompanyRepo) SaveCertificate(_ context.Context, path, password string) error {
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.CertificatePath, r.company.CertificatePassword = path, password
	return nil
}

// Fetch lee el certificado guardado, como hace el repositorio de postgres.
func (r *memCompanyRepo) Fetch(context.Context) (signer.KeyStore, error) {
	data, err := os.ReadFile(r.company.CertificatePath)
	if err != nil {
		return signer.KeyStore{}, err
	}
	return signer.KeyStore{Data: data, Password: r.company.CertificatePassword, Format: signer.FormatPKCS12}, nil
}

func newPipeline() *billing.IssuancePipeline {
	return billing.NewIssuancePipeline(
		entity.IssuerProfile{RUC: "80012345-6", LegalName: "Inicial S.A.", Establishment: "003"},
		domainsifen.NewCDCGenerator(nil),
		infrasifen.NewXMLBuilderService(),
		signer.NewSimulatedSignatureService(zerolog.Nop()),
		billing.NewMemorySequence(),
		zerolog.Nop(),
	)
}

func TestCompany_GetSinConfigurar(t *testing.T) {
	uc := usecase.NewCompanyUseCase(&memCompanyRepo{}, newPipeline(), usecase.CompanyConfig{})
	resp, err := uc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.HasCertificate)
	assert.Equal(t, "SIMULADA", resp.SignatureMode)
}

func TestCompany_UpdateAplicaAlPipeline(t *testing.T) {
	pipeline := newPipeline()
	uc := usecase.NewCompanyUseCase(&memCompanyRepo{}, pipeline, usecase.CompanyConfig{})

	resp, err := uc.Update(context.Background(), dto.UpdateCompanyRequest{Name: " Nueva S.R.L. ", RUC: "4567890-1", Address: "Ruta 2 km 20"})
	require.NoError(t, err)
	assert.Equal(t, "Nueva S.R.L.", resp.Name)
	assert.Equal(t, "4567890-1", resp.RUC)

	profile := pipeline.Profile()
	assert.Equal(t, "Nueva S.R.L.", profile.LegalName)
	assert.Equal(t, "4567890-1", profile.RUC)
	assert.Equal(t, "003", profile.Establishment, "el establecimiento de configuración se conserva")

	_, err = uc.Update(context.Background(), dto.UpdateCompanyRequest{Name: "X", RUC: "sin-digitos"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompany_UploadCertificateCambiaFirmador(t *testing.T) {
	pipeline := newPipeline()
	repo := &memCompanyRepo{}
	dir := t.TempDir()
	uc := usecase.NewCompanyUseCase(repo, pipeline, usecase.CompanyConfig{
		CertDir:        dir,
		SignerOnUpload: func() pkgsifen.Signer { return signer.NewDigitalSignatureService(repo) },
	})
	cred := signertest.NewCredential(t, "Comercial Asunción S.A.")

	resp, err := uc.UploadCertificate(context.Background(), "firma.PFX", cred.P12, signertest.Password)
	require.NoError(t, err)
	assert.Contains(t, resp.Subject, "Comercial Asunción S.A.")
	assert.Equal(t, "REAL", resp.SignatureMode)
	assert.Equal(t, pkgsifen.SignatureModeReal, pipeline.SignatureMode())

	path := filepath.Join(dir, "emisor.p12")
	assert.Equal(t, path, repo.company.CertificatePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	doc, err := pipeline.Issue(context.Background(), entity.Transaction{
		BuyerName: "Juan Pérez",
		Items:     []entity.LineItem{{Description: "Servicio", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)}},
		Total:     decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	_, err = signer.Verify(doc.SignedXML, cred.Cert)
	assert.NoError(t, err)

	got, err := uc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.HasCertificate)
}

func TestCompany_UploadCertificateSoloGuardaEnModoArchivo(t *testing.T) {
	pipeline := newPipeline()
	uc := usecase.NewCompanyUseCase(&memCompanyRepo{}, pipeline, usecase.CompanyConfig{CertDir: t.TempDir()})
	cred := signertest.NewCredential(t, "emisor")

	resp, err := uc.UploadCertificate(context.Background(), "firma.p12", cred.P12, signertest.Password)
	require.NoError(t, err)
	assert.Equal(t, "SIMULADA", resp.SignatureMode)
}

func TestCompany_UploadCertificateErrores(t *testing.T) {
	repo := &memCompanyRepo{}
	uc := usecase.NewCompanyUseCase(repo, newPipeline(), usecase.CompanyConfig{CertDir: t.TempDir()})
	cred := signertest.NewCredential(t, "emisor")

	_, err := uc.UploadCertificate(context.Background(), "firma.pem", cred.PEM(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UploadCertificate(context.Background(), "firma.p12", nil, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UploadCertificate(context.Background(), "firma.p12", cred.P12, "incorrecta")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.Nil(t, repo.company, "no se registra un certificado que no abre")
}
