package signer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
)

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// canonicalElement canonicaliza el elemento como documento propio (sin declaración XML).
func canonicalElement(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return canonicalizeXML(raw)
}

func parseDocument(xmlBytes []byte) (*etree.Document, *etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, nil, fmt.Errorf("parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, fmt.Errorf("documento sin raíz")
	}
	return doc, root, nil
}

// signatureChildren nodos Signature que cuelgan directamente de la raíz.
func signatureChildren(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == SignatureTag {
			out = append(out, child)
		}
	}
	return out
}

// buildSignedInfo arma el SignedInfo con su propio xmlns para que su forma canónica sea la misma
// suelto o dentro de Signature.
func buildSignedInfo(docDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<SignedInfo xmlns="` + NamespaceDS + `">`)
	sb.WriteString(`<CanonicalizationMethod Algorithm="` + AlgExcC14N + `"/>`)
	sb.WriteString(`<SignatureMethod Algorithm="` + AlgRSASHA256 + `"/>`)
	sb.WriteString(`<Reference URI="">`)
	sb.WriteString(`<Transforms><Transform Algorithm="` + TransformEnveloped + `"/>`)
	sb.WriteString(`<Transform Algorithm="` + AlgExcC14N + `"/></Transforms>`)
	sb.WriteString(`<DigestMethod Algorithm="` + AlgSHA256 + `"/>`)
	sb.WriteString(`<DigestValue>` + docDigestB64 + `</DigestValue>`)
	sb.WriteString(`</Reference>`)
	sb.WriteString(`</SignedInfo>`)
	return sb.String()
}

// buildSignature arma el nodo Signature. Sin certificado (firma simulada) se omite KeyInfo.
func buildSignature(signedInfoXML, signatureValueB64, certB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<Signature xmlns="` + NamespaceDS + `">`)
	sb.WriteString(signedInfoXML)
	sb.WriteString(`<SignatureValue>` + signatureValueB64 + `</SignatureValue>`)
	if certB64 != "" {
		sb.WriteString(`<KeyInfo><X509Data><X509Certificate>` + certB64 + `</X509Certificate></X509Data></KeyInfo>`)
	}
	sb.WriteString(`</Signature>`)
	return sb.String()
}

// injectSignature agrega Signature como último hijo de la raíz y devuelve el documento
// firmado y el nodo serializado.
func injectSignature(doc *etree.Document, root *etree.Element, signatureXML string) (signed, block []byte, err error) {
	sigDoc := etree.NewDocument()
	if err := sigDoc.ReadFromString(signatureXML); err != nil {
		return nil, nil, fmt.Errorf("parsear Signature: %w", err)
	}
	sigRoot := sigDoc.Root()
	if sigRoot == nil {
		return nil, nil, fmt.Errorf("Signature vacío")
	}
	block, err = sigDoc.WriteToBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("serializar Signature: %w", err)
	}
	root.AddChild(sigRoot)
	signed, err = doc.WriteToBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("serializar documento firmado: %w", err)
	}
	return signed, block, nil
}
