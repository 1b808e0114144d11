package entity

import "github.com/shopspring/decimal"

// LineItem línea de la operación comercial tal como la envía el punto de venta.
type LineItem struct {
	ProductCode string          // código interno o de barras (opcional)
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal cantidad × precio unitario.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Transaction operación a facturar. Inmutable durante la emisión.
// Total es el monto declarado por el llamador y es la fuente de verdad: no se recalcula
// con la suma de los ítems.
type Transaction struct {
	IssuerRUC string // <número>-<dv>; el dv es opcional
	BuyerName string
	Items     []LineItem
	Total     decimal.Decimal
	TaxRate   int // 10 o 5; 0 = 10%
}

// ItemsTotal suma de subtotales de las líneas (informativo).
func (t Transaction) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range t.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
