// verify_de verifica la firma de un rDE guardado en disco, como lo haría la SET.
// Acepta archivos en UTF-8 o ISO-8859-1 (los convierte antes de canonicalizar).
//
// Uso: go run ./cmd/verify_de [-cert certificado.p12 -password clave] factura.xml
// Con -cert se exige que la firma sea de ese certificado; sin él se usa el embebido.
package main

import (
	"bytes"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
)

var encodingDecl = regexp.MustCompile(`(?i)^(<\?xml[^>]*encoding=["'])([^"']+)(["'])`)

func main() {
	certPath := flag.String("cert", "", "certificado esperado (.p12/.pfx o .pem)")
	certPass := flag.String("password", "", "contraseña del certificado")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: verify_de [-cert ruta -password clave] factura.xml")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer XML: %v\n", err)
		os.Exit(1)
	}
	data, err = toUTF8(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Convertir a UTF-8: %v\n", err)
		os.Exit(1)
	}

	var expected *x509.Certificate
	if *certPath != "" {
		expected, err = loadCertificate(*certPath, *certPass)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Certificado: %v\n", err)
			os.Exit(1)
		}
	}

	res, err := signer.Verify(data, expected)
	switch {
	case errors.Is(err, signer.ErrSimulatedSignature):
		fmt.Println("⚠️  Firma SIMULADA: el documento no tiene validez legal.")
		os.Exit(1)
	case err != nil:
		fmt.Printf("❌ Firma inválida: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Firma válida")
	fmt.Printf("   Nodo raíz: %s\n", res.RootTag)
	fmt.Printf("   CDC:       %s\n", res.DocumentID)
	fmt.Printf("   Titular:   %s\n", res.Certificate.Subject.String())
}

// toUTF8 convierte un documento declarado ISO-8859-1 a UTF-8 y corrige la declaración.
func toUTF8(data []byte) ([]byte, error) {
	m := encodingDecl.FindSubmatch(bytes.TrimLeft(data, " \t\r\n"))
	if m == nil {
		return data, nil
	}
	switch strings.ToUpper(string(m[2])) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
	default:
		return data, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, err
	}
	return encodingDecl.ReplaceAll(bytes.TrimLeft(out, " \t\r\n"), []byte("${1}UTF-8${3}")), nil
}

func loadCertificate(path, password string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tlsCert, err := signer.LoadKeyStore(signer.KeyStore{Data: data, Password: password, Format: signer.FormatFromPath(path)})
	if err != nil {
		return nil, err
	}
	if tlsCert.Leaf != nil {
		return tlsCert.Leaf, nil
	}
	return x509.ParseCertificate(tlsCert.Certificate[0])
}
