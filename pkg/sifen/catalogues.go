// Package sifen contiene catálogos, formatos y contratos alineados al Manual Técnico
// del Sistema Integrado de Facturación Electrónica Nacional (SIFEN, Paraguay).
package sifen

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Versión de formato y namespace del documento electrónico (rDE).
const (
	FormatVersion = "150"
	NamespaceDE   = "http://ekuatia.set.gov.py/sifen/xsd"
)

// =============================================================================
// Tipos de documento electrónico (iTiDE)
// =============================================================================

const (
	DocTypeFacturaElectronica = "01" // Factura electrónica
	DocTypeNotaCredito        = "05" // Nota de crédito electrónica
	DocTypeNotaDebito         = "06" // Nota de débito electrónica
	DocTypeNotaRemision       = "07" // Nota de remisión electrónica
)

// =============================================================================
// Tipos de emisión (iTipEmi)
// =============================================================================

const (
	EmissionNormal       = "1" // Normal
	EmissionContingencia = "2" // Contingencia
)

// Establecimiento y punto de expedición por defecto (sucursal matriz, caja 1).
const (
	DefaultEstablishment   = "001"
	DefaultExpeditionPoint = "001"
)

// =============================================================================
// Consulta pública del DE por QR
// =============================================================================

// DefaultQRHost host de consulta pública de la SET (e-Kuatia).
const DefaultQRHost = "ekuatia.set.gov.py"

// QRURL arma la URL de consulta del documento: https://<host>/consultas/qr?nId=<cdc>.
func QRURL(host, cdc string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultQRHost
	}
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	host = strings.TrimSuffix(host, "/")
	return "https://" + host + "/consultas/qr?nId=" + cdc
}

// FormatAmount formatea montos para el XML: sin separador de miles, punto decimal, 2 decimales (ej: 1500.00).
func FormatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
