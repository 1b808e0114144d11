// check_cert diagnostica el certificado de firma SIFEN: lectura del archivo, contraseña,
// llave RSA y vigencia.
//
// Uso: go run ./cmd/check_cert -cert certificado.p12 [-password clave]
// Sin -cert/-password usa SIFEN_CERT_PATH y SIFEN_CERT_PASSWORD.
package main

import (
	"crypto/rsa"
	"crypto/x509"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/sifen-api/internal/infrastructure/sifen/signer"
)

func main() {
	certPath := flag.String("cert", os.Getenv("SIFEN_CERT_PATH"), "ruta al .p12/.pfx o .pem")
	certPass := flag.String("password", os.Getenv("SIFEN_CERT_PASSWORD"), "contraseña del certificado")
	flag.Parse()

	if *certPath == "" {
		fmt.Fprintln(os.Stderr, "falta -cert (o SIFEN_CERT_PATH)")
		os.Exit(2)
	}

	fmt.Println("🔍 DIAGNÓSTICO DE CERTIFICADO SIFEN")
	fmt.Println("-----------------------------------")
	fmt.Printf("📂 Leyendo: %s\n", *certPath)

	data, err := os.ReadFile(*certPath)
	if err != nil {
		fmt.Printf("\n❌ ERROR DE ARCHIVO: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Archivo encontrado. Tamaño: %d bytes\n", len(data))

	format := signer.FormatFromPath(*certPath)
	fmt.Printf("\n🔐 Decodificando (%s)...\n", format)
	tlsCert, err := signer.LoadKeyStore(signer.KeyStore{Data: data, Password: *certPass, Format: format})
	if err != nil {
		fmt.Printf("\n❌ ERROR DE CONTRASEÑA O FORMATO: %v\n", err)
		os.Exit(1)
	}
	if _, ok := tlsCert.PrivateKey.(*rsa.PrivateKey); !ok {
		fmt.Println("\n❌ La llave privada no es RSA: SIFEN exige RSA-SHA256")
		os.Exit(1)
	}
	leaf := tlsCert.Leaf
	if leaf == nil {
		leaf, err = x509.ParseCertificate(tlsCert.Certificate[0])
		if err != nil {
			fmt.Printf("\n❌ Certificado ilegible: %v\n", err)
			os.Exit(1)
		}
	}

	digest, issuer, serial := signer.CertDigest(leaf)
	fmt.Println("\n✨ Certificado y contraseña correctos.")
	fmt.Printf("   Titular:  %s\n", leaf.Subject.String())
	fmt.Printf("   Emisor:   %s\n", issuer)
	fmt.Printf("   Serial:   %s\n", serial)
	fmt.Printf("   SHA-256:  %s\n", digest)
	fmt.Printf("   Vigencia: %s → %s\n", leaf.NotBefore.Format(time.DateOnly), leaf.NotAfter.Format(time.DateOnly))

	if now := time.Now(); now.After(leaf.NotAfter) || now.Before(leaf.NotBefore) {
		fmt.Println("\n⚠️  El certificado no está vigente hoy.")
		os.Exit(1)
	}
}
