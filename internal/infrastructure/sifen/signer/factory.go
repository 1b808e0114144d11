package signer

import (
	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// Options configuración del firmador.
type Options struct {
	// Store origen del certificado. nil: no hay certificado y se firma en modo simulado.
	Store  CredentialStore
	Logger zerolog.Logger
}

// New elige la variante una sola vez: con Store firma real, sin Store firma simulada.
func New(opts Options) sifen.Signer {
	if opts.Store == nil {
		opts.Logger.Warn().Msg("firmador SIFEN en modo simulado")
		return NewSimulatedSignatureService(opts.Logger)
	}
	return NewDigitalSignatureService(opts.Store)
}
