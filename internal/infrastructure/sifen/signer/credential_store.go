package signer

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/sifen-api/internal/domain"
)

// CredentialStore entrega el almacén de llaves del emisor. Se consulta en cada firma;
// la llave descifrada no se guarda entre llamadas.
type CredentialStore interface {
	Fetch(ctx context.Context) (KeyStore, error)
}

// FileCredentialStore lee el certificado desde una ruta fija (SIFEN_CERT_PATH).
type FileCredentialStore struct {
	Path     string
	Password string
}

// NewFileCredentialStore crea el store.
func NewFileCredentialStore(path, password string) *FileCredentialStore {
	return &FileCredentialStore{Path: path, Password: password}
}

// Fetch lee el archivo en cada llamada.
func (s *FileCredentialStore) Fetch(ctx context.Context) (KeyStore, error) {
	if err := ctx.Err(); err != nil {
		return KeyStore{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return KeyStore{}, fmt.Errorf("%w: leer certificado %s: %w", domain.ErrSigningFailed, s.Path, err)
	}
	return KeyStore{Data: data, Password: s.Password, Format: FormatFromPath(s.Path)}, nil
}

var _ CredentialStore = (*FileCredentialStore)(nil)
