package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
)

// Errores de emisión SIFEN. Ninguno se reintenta dentro del núcleo.
var (
	// ErrUnsupportedTaxRate tasa de IVA distinta de 10% o 5%: error de programación.
	ErrUnsupportedTaxRate = errors.New("tasa de IVA no soportada")
	// ErrInvalidCredential contraseña incorrecta o archivo de certificado corrupto (recuperable por el operador).
	ErrInvalidCredential = errors.New("certificado digital inválido o contraseña incorrecta")
	// ErrSigningFailed cualquier otra falla al cargar la credencial o firmar.
	ErrSigningFailed = errors.New("falla al firmar el documento")
	// ErrMalformedTransaction datos de la transacción con forma inválida (sin ítems, cantidades negativas, etc.).
	ErrMalformedTransaction = errors.New("transacción mal formada")
)
