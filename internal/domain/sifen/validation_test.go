package sifen_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/internal/domain/entity"
	"github.com/jhoicas/sifen-api/internal/domain/sifen"
)

func validTransaction() entity.Transaction {
	return entity.Transaction{
		IssuerRUC: "80012345-6",
		BuyerName: "Juan Pérez",
		Items: []entity.LineItem{
			{ProductCode: "7840001", Description: "Yerba mate 1kg", Quantity: 2, UnitPrice: decimal.NewFromInt(55000)},
		},
		Total: decimal.NewFromInt(110000),
	}
}

func TestValidateTransaction_OK(t *testing.T) {
	assert.NoError(t, sifen.ValidateTransaction(validTransaction()))
}

// La cantidad cero se acepta (ítem informativo); solo las negativas son error.
func TestValidateTransaction_CantidadCeroPermitida(t *testing.T) {
	tx := validTransaction()
	tx.Items[0].Quantity = 0
	assert.NoError(t, sifen.ValidateTransaction(tx))
}

func TestValidateTransaction_Errores(t *testing.T) {
	cases := map[string]func(tx *entity.Transaction){
		"sin ítems":                 func(tx *entity.Transaction) { tx.Items = nil },
		"cantidad negativa":         func(tx *entity.Transaction) { tx.Items[0].Quantity = -1 },
		"precio negativo":           func(tx *entity.Transaction) { tx.Items[0].UnitPrice = decimal.NewFromInt(-5) },
		"sin descripción":           func(tx *entity.Transaction) { tx.Items[0].Description = "  " },
		"sin receptor":              func(tx *entity.Transaction) { tx.BuyerName = "" },
		"total cero":                func(tx *entity.Transaction) { tx.Total = decimal.Zero },
		"RUC sin número":            func(tx *entity.Transaction) { tx.IssuerRUC = "-3" },
		"receptor UTF-8 inválido":   func(tx *entity.Transaction) { tx.BuyerName = "A\xffB" },
		"receptor con control":      func(tx *entity.Transaction) { tx.BuyerName = "A\x01B" },
		"descripción con control":   func(tx *entity.Transaction) { tx.Items[0].Description = "Yerba\x00mate" },
		"código UTF-8 inválido":     func(tx *entity.Transaction) { tx.Items[0].ProductCode = "78\xc3" },
		"total con tres decimales":  func(tx *entity.Transaction) { tx.Total = decimal.RequireFromString("1.005") },
		"precio con tres decimales": func(tx *entity.Transaction) { tx.Items[0].UnitPrice = decimal.RequireFromString("0.001") },
	}
	for name, mutate := range cases {
		tx := validTransaction()
		mutate(&tx)
		err := sifen.ValidateTransaction(tx)
		assert.ErrorIs(t, err, domain.ErrMalformedTransaction, name)
	}
}

// Tab y saltos de línea son texto XML válido; los ceros a la derecha no cuentan como decimales.
func TestValidateTransaction_TextoYMontosAdmitidos(t *testing.T) {
	tx := validTransaction()
	tx.BuyerName = "Juan\tPérez"
	tx.Items[0].Description = "Yerba mate\n1kg ñandutí"
	tx.Total = decimal.RequireFromString("110000.000")
	tx.Items[0].UnitPrice = decimal.RequireFromString("55000.50")
	assert.NoError(t, sifen.ValidateTransaction(tx))
}
