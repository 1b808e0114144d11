package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sifen-api/internal/application/auth"
	"github.com/jhoicas/sifen-api/internal/application/billing"
	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/application/usecase"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/repository"
	domainsifen "github.com/jhoicas/sifen-api/internal/domain/sifen"
	"github.com/jhoicas/sifen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer/signertest"
	apphttp "github.com/jhoicas/sifen-api/internal/interfaces/http"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

const operatorPassword = "clave-operador"

// ---- repositorios en memoria

type memInvoiceRepo struct {
	mu    sync.Mutex
	byCDC map[string]*entity.Invoice
	order []string
}

func (r *memInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCDC[inv.CDC]; ok {
		return domain.ErrDuplicate
	}
	r.byCDC[inv.CDC] = inv
	r.order = append(r.order, inv.CDC)
	return nil
}

func (r *memInvoiceRepo) GetByCDC(_ context.Context, cdc string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byCDC[cdc], nil
}

func (r *memInvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]entity.InvoiceSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.InvoiceSummary{}
	for _, cdc := range r.order {
		inv := r.byCDC[cdc]
		if f.Query != "" && !strings.Contains(strings.ToLower(inv.BuyerName), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, entity.InvoiceSummary{ID: inv.ID, CDC: inv.CDC, BuyerName: inv.BuyerName, Total: inv.Total, SignatureMode: inv.SignatureMode, IssuedAt: inv.IssuedAt})
	}
	return out, nil
}

type memTxRunner struct {
	seq  *billing.MemorySequence
	repo *memInvoiceRepo
}

func (t memTxRunner) RunInvoice(_ context.Context, fn func(repository.SequenceRepository, repository.InvoiceRepository) error) error {
	return fn(t.seq, t.repo)
}

type memCompanyRepo struct {
	mu      sync.Mutex
	company *entity.Company
}

func (r *memCompanyRepo) Get(context.Context) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.company == nil {
		return nil, nil
	}
	c := *r.company
	return &c, nil
}

func (r *memCompanyRepo) SaveSettings(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.Name, r.company.RUC, r.company.Address, r.company.UpdatedAt = c.Name, c.RUC, c.Address, c.UpdatedAt
	return nil
}

func (r *memCompanyRepo) SaveCertificate(_ context.Context, path, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.company == nil {
		r.company = &entity.Company{}
	}
	r.company.CertificatePath, r.company.CertificatePassword = path, password
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// ---- armado de la app

type testServer struct {
	app      *fiber.App
	pipeline *billing.IssuancePipeline
	invoices *memInvoiceRepo
}

func newTestServer(t *testing.T, s pkgsifen.Signer, db apphttp.Pinger) *testServer {
	t.Helper()
	log := zerolog.Nop()
	profile := entity.IssuerProfile{RUC: "80012345-6", LegalName: "Comercial Asunción S.A.", Address: "Av. Mcal. López 1234"}
	pipeline := billing.NewIssuancePipeline(
		profile,
		domainsifen.NewCDCGenerator(nil),
		sifen.NewXMLBuilderService(),
		s,
		billing.NewMemorySequence(),
		log,
	).WithClock(func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) })

	invoices := &memInvoiceRepo{byCDC: make(map[string]*entity.Invoice)}
	companies := &memCompanyRepo{}
	hash, err := bcrypt.GenerateFromPassword([]byte(operatorPassword), bcrypt.MinCost)
	require.NoError(t, err)

	fallback := entity.Company{Name: profile.LegalName, RUC: profile.RUC, Address: profile.Address}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		EmitInvoice: billing.NewEmitInvoiceUseCase(pipeline, memTxRunner{seq: billing.NewMemorySequence(), repo: invoices}, invoices, "ekuatia.set.gov.py"),
		InvoicePDF:  billing.NewPDFUseCase(invoices, companies, pdf.NewMarotoPDFGenerator(), fallback, "ekuatia.set.gov.py"),
		Verify:      billing.NewVerifyUseCase(),
		CompanyUC:   usecase.NewCompanyUseCase(companies, pipeline, usecase.CompanyConfig{CertDir: t.TempDir()}),
		AuthUC: auth.NewAuthUseCase(
			auth.Operator{Username: testUsername, PasswordHash: string(hash)},
			auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
		),
		DB:        db,
		Mode:      func() string { return string(pipeline.SignatureMode()) },
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return &testServer{app: app, pipeline: pipeline, invoices: invoices}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return s.do(t, method, path, token, bytes.NewReader(raw), fiber.MIMEApplicationJSON)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func invoiceBody(rate int) map[string]any {
	return map[string]any{
		"buyer_name": "Juan Pérez",
		"items": []map[string]any{
			{"product_code": "7840001", "description": "Yerba mate 1kg", "quantity": 2, "unit_price": "55000"},
		},
		"total":    "110000",
		"tax_rate": rate,
	}
}

func simulated() pkgsifen.Signer { return signer.NewSimulatedSignatureService(zerolog.Nop()) }

// ---- tests

func TestHealth(t *testing.T) {
	srv := newTestServer(t, simulated(), fakePinger{})
	resp := srv.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "SIMULADA", body["signature_mode"])
	assert.Equal(t, "ok", body["database"])
}

func TestHealth_BaseCaida(t *testing.T) {
	srv := newTestServer(t, simulated(), fakePinger{err: errors.New("conexión rechazada")})
	resp := srv.do(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", decode[map[string]string](t, resp)["status"])
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)

	resp := srv.doJSON(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: testUsername, Password: operatorPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, testExpMin*60, out.ExpiresIn)

	resp = srv.doJSON(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: testUsername, Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, resp).Code)

	resp = srv.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": testUsername})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestInvoices_RequiereToken(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)
	resp := srv.doJSON(t, http.MethodPost, "/api/invoices", "", invoiceBody(10))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, srv.invoices.order)
}

func TestInvoices_EmitirSimuladaYConsultar(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)
	token := tokenForRole(t, auth.RoleAdmin)

	resp := srv.doJSON(t, http.MethodPost, "/api/invoices", token, invoiceBody(10))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.EmitInvoiceResponse](t, resp)
	require.True(t, domainsifen.ValidCDC(out.CDC))
	assert.Equal(t, "SIMULADA", out.SignatureMode)
	assert.Equal(t, billing.SimulatedSignatureWarning, out.Warning)
	assert.Equal(t, "100000", out.TaxBase.String())
	assert.Equal(t, "10000", out.TaxAmount.String())
	assert.Equal(t, "https://ekuatia.set.gov.py/consultas/qr?nId="+out.CDC, out.QRURL)

	resp = srv.do(t, http.MethodGet, "/api/invoices/"+out.CDC, token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.InvoiceResponse](t, resp)
	assert.Equal(t, "Juan Pérez", got.BuyerName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "110000", got.Items[0].Subtotal.String())

	resp = srv.do(t, http.MethodGet, "/api/invoices?q=juan&limit=5", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.InvoiceListResponse](t, resp)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, dto.PageResponse{Query: "juan", Limit: 5, Count: 1}, list.Page)

	resp = srv.do(t, http.MethodGet, "/api/invoices?limit=muchos", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/invoices/"+out.CDC+"/xml", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	xmlBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(xmlBytes), `Id="`+out.CDC+`"`)

	resp = srv.do(t, http.MethodPost, "/api/invoices/verify", token, bytes.NewReader(xmlBytes), fiber.MIMEApplicationXML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verified := decode[dto.VerifyResponse](t, resp)
	assert.False(t, verified.Valid)
	assert.Equal(t, "SIMULADA", verified.SignatureMode)

	resp = srv.do(t, http.MethodGet, "/api/invoices/"+out.CDC+"/pdf", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
}

func TestInvoices_FirmaRealVerifica(t *testing.T) {
	cred := signertest.NewCredential(t, "Comercial Asunción S.A.")
	srv := newTestServer(t, signer.NewDigitalSignatureService(signertest.StaticStore{Store: cred.KeyStore(signertest.Password)}), nil)
	token := tokenForRole(t, auth.RoleAdmin)

	resp := srv.doJSON(t, http.MethodPost, "/api/invoices", token, invoiceBody(5))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.EmitInvoiceResponse](t, resp)
	assert.Equal(t, "REAL", out.SignatureMode)
	assert.Empty(t, out.Warning)
	assert.Equal(t, 5, out.TaxRate)

	xmlResp := srv.do(t, http.MethodGet, "/api/invoices/"+out.CDC+"/xml", token, nil, "")
	xmlBytes, err := io.ReadAll(xmlResp.Body)
	require.NoError(t, err)

	resp = srv.do(t, http.MethodPost, "/api/invoices/verify", token, bytes.NewReader(xmlBytes), fiber.MIMEApplicationXML)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	verified := decode[dto.VerifyResponse](t, resp)
	assert.True(t, verified.Valid, verified.Reason)
	assert.Equal(t, out.CDC, verified.CDC)
}

func TestInvoices_Errores(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)
	token := tokenForRole(t, auth.RoleAdmin)

	cases := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"tasa no soportada", invoiceBody(19), http.StatusBadRequest, "UNSUPPORTED_TAX_RATE"},
		{"sin ítems", map[string]any{"buyer_name": "Juan", "items": []any{}, "total": "100"}, http.StatusBadRequest, "VALIDATION"},
		{"sin receptor", map[string]any{"items": []map[string]any{{"description": "x", "quantity": 1, "unit_price": "1"}}, "total": "1"}, http.StatusBadRequest, "VALIDATION"},
		{"total negativo", map[string]any{"buyer_name": "Juan", "items": []map[string]any{{"description": "x", "quantity": 1, "unit_price": "1"}}, "total": "-1"}, http.StatusBadRequest, "MALFORMED_TRANSACTION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := srv.doJSON(t, http.MethodPost, "/api/invoices", token, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}

	resp := srv.do(t, http.MethodPost, "/api/invoices", token, strings.NewReader("{no es json"), fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)

	resp = srv.do(t, http.MethodGet, "/api/invoices/123", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/invoices/"+strings.Repeat("0", 44), token, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	assert.Empty(t, srv.invoices.order, "ningún error debe persistir facturas")
}

func TestInvoices_CredencialInvalida422(t *testing.T) {
	cred := signertest.NewCredential(t, "Comercial Asunción S.A.")
	srv := newTestServer(t, signer.NewDigitalSignatureService(signertest.StaticStore{Store: cred.KeyStore("incorrecta")}), nil)

	resp := srv.doJSON(t, http.MethodPost, "/api/invoices", tokenForRole(t, auth.RoleAdmin), invoiceBody(10))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIAL", decode[dto.ErrorResponse](t, resp).Code)
	assert.Empty(t, srv.invoices.order)
}

func TestCompany_SoloAdmin(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)
	resp := srv.do(t, http.MethodGet, "/api/company", tokenForRole(t, "cajero"), nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCompany_ActualizarYSubirCertificado(t *testing.T) {
	srv := newTestServer(t, simulated(), nil)
	token := tokenForRole(t, auth.RoleAdmin)

	resp := srv.doJSON(t, http.MethodPut, "/api/company", token, dto.UpdateCompanyRequest{Name: "Nueva Razón S.A.", RUC: "80099999-1", Address: "Calle 1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	company := decode[dto.CompanyResponse](t, resp)
	assert.Equal(t, "Nueva Razón S.A.", company.Name)
	assert.Equal(t, "80099999-1", srv.pipeline.Profile().RUC)

	resp = srv.doJSON(t, http.MethodPut, "/api/company", token, map[string]string{"ruc": "80099999-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cred := signertest.NewCredential(t, "Nueva Razón S.A.")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("certificate", "emisor.p12")
	require.NoError(t, err)
	_, err = fw.Write(cred.P12)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("password", signertest.Password))
	require.NoError(t, mw.Close())

	resp = srv.do(t, http.MethodPost, "/api/company/certificate", token, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upload := decode[dto.CertificateUploadResponse](t, resp)
	assert.Contains(t, upload.Subject, "Nueva Razón S.A.")

	resp = srv.do(t, http.MethodPost, "/api/company/certificate", token, strings.NewReader(""), fiber.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
