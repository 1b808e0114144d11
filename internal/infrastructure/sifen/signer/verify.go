package signer

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/subtle"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Errores de verificación.
var (
	ErrSignatureNotFound  = errors.New("signer: el documento no tiene nodo Signature")
	ErrMultipleSignatures = errors.New("signer: el documento tiene más de un nodo Signature")
	ErrSimulatedSignature = errors.New("signer: firma simulada, sin validez legal")
	ErrDigestMismatch     = errors.New("signer: el DigestValue no coincide con el documento")
	ErrSignatureInvalid   = errors.New("signer: SignatureValue inválido")
)

// VerifyResult datos del documento verificado.
type VerifyResult struct {
	RootTag     string
	DocumentID  string // atributo Id del primer hijo con Id (el CDC en un rDE)
	Certificate *x509.Certificate
}

// Verify comprueba una firma enveloped como lo haría un tercero: quita Signature, vuelve a
// canonicalizar, compara el DigestValue y verifica SignatureValue sobre el SignedInfo canónico.
// Si cert es nil se usa el X509Certificate embebido en KeyInfo.
func Verify(signed []byte, cert *x509.Certificate) (*VerifyResult, error) {
	_, root, err := parseDocument(signed)
	if err != nil {
		return nil, err
	}
	sigs := signatureChildren(root)
	switch len(sigs) {
	case 0:
		return nil, ErrSignatureNotFound
	case 1:
	default:
		return nil, ErrMultipleSignatures
	}
	sig := sigs[0]

	signedInfo := sig.SelectElement("SignedInfo")
	digestEl := sig.FindElement("SignedInfo/Reference/DigestValue")
	sigValueEl := sig.SelectElement("SignatureValue")
	if signedInfo == nil || digestEl == nil || sigValueEl == nil {
		return nil, fmt.Errorf("%w: Signature incompleto", ErrSignatureInvalid)
	}
	declaredDigest := strings.TrimSpace(digestEl.Text())
	if declaredDigest == SimulatedDigestValue {
		return nil, ErrSimulatedSignature
	}

	if cert == nil {
		cert, err = embeddedCertificate(sig.FindElement("KeyInfo/X509Data/X509Certificate"))
		if err != nil {
			return nil, err
		}
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: el certificado no tiene llave pública RSA", ErrSignatureInvalid)
	}

	// Transform enveloped: el digest se calcula sin el nodo Signature.
	siCopy := signedInfo.Copy()
	if siCopy.SelectAttr("xmlns") == nil {
		siCopy.CreateAttr("xmlns", NamespaceDS)
	}
	root.RemoveChild(sig)

	canonicalDoc, err := canonicalElement(root)
	if err != nil {
		return nil, fmt.Errorf("canonicalizar documento: %w", err)
	}
	digest := sha256.Sum256(canonicalDoc)
	computed := base64.StdEncoding.EncodeToString(digest[:])
	if subtle.ConstantTimeCompare([]byte(computed), []byte(declaredDigest)) != 1 {
		return nil, ErrDigestMismatch
	}

	canonicalSignedInfo, err := canonicalElement(siCopy)
	if err != nil {
		return nil, fmt.Errorf("canonicalizar SignedInfo: %w", err)
	}
	sigValue, err := base64.StdEncoding.DecodeString(compactBase64(sigValueEl.Text()))
	if err != nil {
		return nil, fmt.Errorf("%w: SignatureValue no es Base64: %w", ErrSignatureInvalid, err)
	}
	hash := sha256.Sum256(canonicalSignedInfo)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hash[:], sigValue); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
	}

	res := &VerifyResult{RootTag: root.Tag, Certificate: cert}
	for _, child := range root.ChildElements() {
		if id := child.SelectAttrValue("Id", ""); id != "" {
			res.DocumentID = id
			break
		}
	}
	return res, nil
}

func embeddedCertificate(el *etree.Element) (*x509.Certificate, error) {
	if el == nil {
		return nil, fmt.Errorf("%w: sin X509Certificate en KeyInfo", ErrSignatureInvalid)
	}
	der, err := base64.StdEncoding.DecodeString(compactBase64(el.Text()))
	if err != nil {
		return nil, fmt.Errorf("%w: X509Certificate no es Base64: %w", ErrSignatureInvalid, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parsear X509Certificate: %w", ErrSignatureInvalid, err)
	}
	return cert, nil
}

// compactBase64 quita saltos de línea y espacios que algunos firmadores intercalan en el Base64.
func compactBase64(s string) string {
	return strings.Join(strings.Fields(s), "")
}
