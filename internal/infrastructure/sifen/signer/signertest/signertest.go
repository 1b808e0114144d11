// Package signertest genera certificados de prueba (RSA autofirmado en .p12 o PEM) para los tests de firma.
package signertest

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	gopkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
)

// Password contraseña de los .p12 generados.
const Password = "clave-de-prueba"

// Credential par llave/certificado de prueba.
type Credential struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate
	P12  []byte
}

// NewCredential genera una llave RSA 2048 y un certificado autofirmado para commonName.
func NewCredential(t testing.TB, commonName string) *Credential {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generar llave: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName, Country: []string{"PY"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("crear certificado: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsear certificado: %v", err)
	}
	p12, err := gopkcs12.Encode(rand.Reader, key, cert, nil, Password)
	if err != nil {
		t.Fatalf("codificar p12: %v", err)
	}
	return &Credential{Key: key, Cert: cert, P12: p12}
}

// PEM certificado y llave en un solo bloque PEM.
func (c *Credential) PEM() []byte {
	out := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Cert.Raw})
	return append(out, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(c.Key)})...)
}

// WriteP12 escribe el .p12 en dir y devuelve la ruta.
func (c *Credential) WriteP12(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "certificado.p12")
	if err := os.WriteFile(path, c.P12, 0o600); err != nil {
		t.Fatalf("escribir p12: %v", err)
	}
	return path
}

// KeyStore almacén .p12 con la contraseña indicada.
func (c *Credential) KeyStore(password string) signer.KeyStore {
	return signer.KeyStore{Data: c.P12, Password: password, Format: signer.FormatPKCS12}
}

// StaticStore CredentialStore en memoria.
type StaticStore struct {
	Store signer.KeyStore
	Err   error
}

// Fetch implementa signer.CredentialStore.
func (s StaticStore) Fetch(ctx context.Context) (signer.KeyStore, error) {
	if s.Err != nil {
		return signer.KeyStore{}, s.Err
	}
	return s.Store, nil
}

var _ signer.CredentialStore = StaticStore{}
