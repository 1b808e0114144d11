package signer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// SimulatedSignatureService se usa mientras no hay certificado configurado: inserta un nodo
// Signature con la misma ubicación pero con valores fijos. El documento no tiene validez legal.
type SimulatedSignatureService struct {
	log zerolog.Logger
}

// NewSimulatedSignatureService crea el servicio.
func NewSimulatedSignatureService(log zerolog.Logger) *SimulatedSignatureService {
	return &SimulatedSignatureService{log: log}
}

// Mode implementa sifen.Signer.
func (s *SimulatedSignatureService) Mode() sifen.SignatureMode {
	return sifen.SignatureModeSimulated
}

// Sign implementa sifen.Signer. Nunca devuelve domain.ErrInvalidCredential.
func (s *SimulatedSignatureService) Sign(ctx context.Context, xmlBytes []byte) (*sifen.SignResult, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("%w: XML vacío", domain.ErrSigningFailed)
	}
	doc, root, err := parseDocument(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}
	if len(signatureChildren(root)) > 0 {
		return nil, fmt.Errorf("%w: el documento ya está firmado", domain.ErrSigningFailed)
	}

	signatureXML := buildSignature(buildSignedInfo(SimulatedDigestValue), SimulatedSignatureValue, "")
	signed, block, err := injectSignature(doc, root, signatureXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}

	s.log.Warn().
		Str("mode", string(sifen.SignatureModeSimulated)).
		Msg("sin certificado configurado: firma simulada, el documento no tiene validez legal")
	return &sifen.SignResult{Signed: signed, SignatureBlock: block, Mode: sifen.SignatureModeSimulated}, nil
}

var _ sifen.Signer = (*SimulatedSignatureService)(nil)
