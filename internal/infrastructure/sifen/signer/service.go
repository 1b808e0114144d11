// Package signer firma el rDE con XMLDSig enveloped (RSA-SHA256, exc-c14n, digest SHA-256)
// e inyecta el nodo Signature como último hijo del elemento raíz.
package signer

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/pkg/sifen"
)

// DigitalSignatureService firma con el certificado del emisor. El certificado se pide al
// CredentialStore en cada llamada y se descarta al terminar.
type DigitalSignatureService struct {
	store CredentialStore
}

// NewDigitalSignatureService crea el servicio.
func NewDigitalSignatureService(store CredentialStore) *DigitalSignatureService {
	return &DigitalSignatureService{store: store}
}

// Mode implementa sifen.Signer.
func (s *DigitalSignatureService) Mode() sifen.SignatureMode {
	return sifen.SignatureModeReal
}

// Sign implementa sifen.Signer.
func (s *DigitalSignatureService) Sign(ctx context.Context, xmlBytes []byte) (*sifen.SignResult, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("%w: XML vacío", domain.ErrSigningFailed)
	}

	ks, err := s.store.Fetch(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredential) || errors.Is(err, domain.ErrSigningFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: obtener certificado: %w", domain.ErrSigningFailed, err)
	}
	cert, err := LoadKeyStore(ks)
	if err != nil {
		return nil, err
	}
	priv, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: el certificado debe incluir llave privada RSA", domain.ErrSigningFailed)
	}
	leaf, err := leafCertificate(cert)
	if err != nil {
		return nil, fmt.Errorf("%w: parsear certificado: %w", domain.ErrSigningFailed, err)
	}

	doc, root, err := parseDocument(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}
	if len(signatureChildren(root)) > 0 {
		return nil, fmt.Errorf("%w: el documento ya está firmado", domain.ErrSigningFailed)
	}

	// 1) Digest del documento (exc-c14n). Reference URI="" con transform enveloped
	canonicalDoc, err := canonicalElement(root)
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalizar documento: %w", domain.ErrSigningFailed, err)
	}
	docDigest := sha256.Sum256(canonicalDoc)
	docDigestB64 := base64.StdEncoding.EncodeToString(docDigest[:])

	// 2) SignedInfo canonicalizado y firmado con RSA PKCS#1 v1.5 SHA-256
	signedInfoXML := buildSignedInfo(docDigestB64)
	canonicalSignedInfo, err := canonicalizeXML([]byte(signedInfoXML))
	if err != nil {
		return nil, fmt.Errorf("%w: canonicalizar SignedInfo: %w", domain.ErrSigningFailed, err)
	}
	signHash := sha256.Sum256(canonicalSignedInfo)
	signatureValue, err := rsa.SignPKCS1v15(nil, priv, crypto.SHA256, signHash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: firmar SignedInfo: %w", domain.ErrSigningFailed, err)
	}

	// 3) KeyInfo (X509Certificate) e inyección como último hijo
	signatureXML := buildSignature(
		signedInfoXML,
		base64.StdEncoding.EncodeToString(signatureValue),
		base64.StdEncoding.EncodeToString(leaf.Raw),
	)
	signed, block, err := injectSignature(doc, root, signatureXML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}
	return &sifen.SignResult{Signed: signed, SignatureBlock: block, Mode: sifen.SignatureModeReal}, nil
}

var _ sifen.Signer = (*DigitalSignatureService)(nil)
