// Carga de certificado desde .p12 (PKCS#12) o PEM.

package signer

import (
	"bytes"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"

	"github.com/jhoicas/sifen-api/internal/domain"
)

// KeyStoreFormat formato del almacén de llaves.
type KeyStoreFormat string

const (
	FormatPKCS12 KeyStoreFormat = "p12"
	FormatPEM    KeyStoreFormat = "pem"
)

// KeyStore bytes crudos del almacén de llaves y su contraseña, tal como los entrega un CredentialStore.
// Vive solo durante una firma.
type KeyStore struct {
	Data     []byte
	Password string
	Format   KeyStoreFormat // vacío: se detecta por contenido
}

// FormatFromPath deduce el formato por la extensión (.pem, .crt → PEM; el resto PKCS#12).
func FormatFromPath(path string) KeyStoreFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pem", ".crt":
		return FormatPEM
	default:
		return FormatPKCS12
	}
}

// LoadKeyStore decodifica certificado y llave privada. Contraseña incorrecta o archivo corrupto
// devuelven domain.ErrInvalidCredential.
func LoadKeyStore(ks KeyStore) (tls.Certificate, error) {
	if len(ks.Data) == 0 {
		return tls.Certificate{}, fmt.Errorf("%w: almacén de llaves vacío", domain.ErrInvalidCredential)
	}
	format := ks.Format
	if format == "" {
		format = FormatPKCS12
		if bytes.Contains(ks.Data, []byte("-----BEGIN")) {
			format = FormatPEM
		}
	}
	switch format {
	case FormatPKCS12:
		return decodeP12(ks.Data, ks.Password)
	case FormatPEM:
		// Certificado y llave en el mismo archivo.
		cert, err := tls.X509KeyPair(ks.Data, ks.Data)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("%w: cargar PEM: %w", domain.ErrInvalidCredential, err)
		}
		return cert, nil
	default:
		return tls.Certificate{}, fmt.Errorf("%w: formato de almacén desconocido %q", domain.ErrSigningFailed, format)
	}
}

// LoadFromP12 carga certificado y llave privada desde un archivo .p12/.pfx.
// El password puede ser vacío si el archivo no está protegido.
func LoadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: leer p12: %w", domain.ErrSigningFailed, err)
	}
	return decodeP12(data, password)
}

func decodeP12(data []byte, password string) (tls.Certificate, error) {
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: decodificar p12: %w", domain.ErrInvalidCredential, err)
	}
	// pkcs12.Decode devuelve un solo certificado; para el rDE basta el certificado hoja.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// leafCertificate devuelve el certificado hoja, parseándolo si tls no lo dejó cargado.
func leafCertificate(cert tls.Certificate) (*x509.Certificate, error) {
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("almacén sin certificado")
	}
	return x509.ParseCertificate(cert.Certificate[0])
}

// CertDigest devuelve el digest SHA-256 del certificado (Base64), el emisor y el serial en hex.
func CertDigest(cert *x509.Certificate) (digestB64 string, issuerName string, serialHex string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serialHex = cert.SerialNumber.Text(16)
	return digestB64, issuerName, serialHex
}
