// Algoritmos XMLDSig usados por la firma del rDE (SIFEN) y valores de la firma simulada.

package signer

// Namespaces y algoritmos XMLDSig.
const (
	NamespaceDS        = "http://www.w3.org/2000/09/xmldsig#"
	AlgExcC14N         = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgRSASHA256       = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256          = "http://www.w3.org/2001/04/xmlenc#sha256"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// Nodo de firma, siempre último hijo del rDE.
const SignatureTag = "Signature"

// Valores fijos de la firma simulada. Mantienen la estructura del nodo pero no tienen valor criptográfico.
const (
	SimulatedDigestValue    = "simulacion_digest_value_base64"
	SimulatedSignatureValue = "simulacion_firma_criptografica"
)
