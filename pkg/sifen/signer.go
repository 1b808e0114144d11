// Package sifen: interfaz para firma digital de documentos electrónicos (XMLDSig RSA-SHA256).

package sifen

import "context"

// SignatureMode indica si el documento lleva una firma con validez legal o una firma simulada.
type SignatureMode string

const (
	SignatureModeReal      SignatureMode = "REAL"
	SignatureModeSimulated SignatureMode = "SIMULADA"
)

// SignResult resultado de firmar un rDE.
type SignResult struct {
	Signed         []byte        // XML completo con <Signature> como último hijo de rDE
	SignatureBlock []byte        // solo el nodo <Signature> serializado
	Mode           SignatureMode
}

// Signer firma el XML del documento electrónico y devuelve el XML con la firma inyectada.
// La variante (real o simulada) se elige una sola vez al construir el Signer.
type Signer interface {
	// Sign toma el XML canónico sin firma y retorna el XML con el nodo Signature
	// como último hijo del elemento raíz.
	Sign(ctx context.Context, xmlBytes []byte) (*SignResult, error)
	// Mode informa la variante con la que firma este Signer.
	Mode() SignatureMode
}
