package sifen

import (
	"fmt"
	"strings"
	"unicode"
)

// rucBaseMax base máxima del módulo 11 usado por la SET para el dígito verificador del RUC.
const rucBaseMax = 11

// RUC identificador tributario paraguayo separado en número y dígito verificador.
type RUC struct {
	Number        string // solo dígitos
	CheckDigit    string // "0" si no vino en el texto original
	HasCheckDigit bool
}

// String devuelve el RUC en formato <número>-<dv>.
func (r RUC) String() string {
	return r.Number + "-" + r.CheckDigit
}

// ParseRUC separa "80012345-6" en número y dígito verificador.
// Si no hay guion el dígito verificador queda en "0". Se descartan caracteres que no sean dígitos.
func ParseRUC(s string) (RUC, error) {
	numPart, dvPart, hasDV := strings.Cut(strings.TrimSpace(s), "-")
	number := string(extractDigits(numPart))
	if number == "" {
		return RUC{}, fmt.Errorf("sifen: RUC %q sin parte numérica", s)
	}
	ruc := RUC{Number: number, CheckDigit: "0"}
	if hasDV {
		if dv := extractDigits(dvPart); len(dv) > 0 {
			ruc.CheckDigit = string(dv[:1])
			ruc.HasCheckDigit = true
		}
	}
	return ruc, nil
}

// ComputeRUCCheckDigit calcula el dígito verificador del RUC con el algoritmo módulo 11 de la SET:
// pesos 2..11 de derecha a izquierda (cíclicos), resto r = suma % 11, dv = 11 - r si r > 1, si no 0.
func ComputeRUCCheckDigit(number string) (byte, error) {
	digits := extractDigits(number)
	if len(digits) == 0 {
		return 0, fmt.Errorf("sifen: se requieren dígitos para calcular el dígito verificador")
	}
	k := 2
	var sum int
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * k
		k++
		if k > rucBaseMax {
			k = 2
		}
	}
	r := sum % 11
	if r > 1 {
		return byte('0' + (11 - r)), nil
	}
	return '0', nil
}

// ValidateRUCCheckDigit valida que el RUC traiga un dígito verificador correcto.
func ValidateRUCCheckDigit(s string) error {
	ruc, err := ParseRUC(s)
	if err != nil {
		return err
	}
	if !ruc.HasCheckDigit {
		return fmt.Errorf("sifen: RUC %q sin dígito verificador", s)
	}
	expected, err := ComputeRUCCheckDigit(ruc.Number)
	if err != nil {
		return err
	}
	if ruc.CheckDigit[0] != expected {
		return fmt.Errorf("sifen: dígito verificador del RUC inválido: esperado %c, recibido %s", expected, ruc.CheckDigit)
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
