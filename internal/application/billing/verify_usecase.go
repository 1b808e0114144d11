package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
	pkgsifen "github.com/jhoicas/sifen-api/pkg/sifen"
)

// VerifyUseCase verifica un rDE firmado como lo haría la SET: digest del documento sin la firma
// y SignatureValue contra el certificado embebido.
type VerifyUseCase struct{}

// NewVerifyUseCase construye el caso de uso.
func NewVerifyUseCase() *VerifyUseCase {
	return &VerifyUseCase{}
}

// Verify devuelve Valid=false con el motivo cuando la firma no verifica; solo un XML vacío es error.
func (uc *VerifyUseCase) Verify(_ context.Context, signedXML []byte) (*dto.VerifyResponse, error) {
	if len(signedXML) == 0 {
		return nil, fmt.Errorf("%w: XML vacío", domain.ErrInvalidInput)
	}
	res, err := signer.Verify(signedXML, nil)
	switch {
	case err == nil:
		return &dto.VerifyResponse{
			Valid:         true,
			CDC:           res.DocumentID,
			SignatureMode: string(pkgsifen.SignatureModeReal),
			Subject:       res.Certificate.Subject.String(),
		}, nil
	case errors.Is(err, signer.ErrSimulatedSignature):
		return &dto.VerifyResponse{
			Valid:         false,
			SignatureMode: string(pkgsifen.SignatureModeSimulated),
			Reason:        err.Error(),
		}, nil
	default:
		return &dto.VerifyResponse{Valid: false, Reason: err.Error()}, nil
	}
}
