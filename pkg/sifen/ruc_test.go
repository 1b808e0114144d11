package sifen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/pkg/sifen"
)

func TestParseRUC_ConDigitoVerificador(t *testing.T) {
	ruc, err := sifen.ParseRUC("80012345-6")
	require.NoError(t, err)
	assert.Equal(t, "80012345", ruc.Number)
	assert.Equal(t, "6", ruc.CheckDigit)
	assert.True(t, ruc.HasCheckDigit)
	assert.Equal(t, "80012345-6", ruc.String())
}

// Sin guion el dígito verificador es "0".
func TestParseRUC_SinDigitoVerificador(t *testing.T) {
	ruc, err := sifen.ParseRUC("4567890")
	require.NoError(t, err)
	assert.Equal(t, "4567890", ruc.Number)
	assert.Equal(t, "0", ruc.CheckDigit)
	assert.False(t, ruc.HasCheckDigit)
}

func TestParseRUC_GuionSinDigito(t *testing.T) {
	ruc, err := sifen.ParseRUC("4567890-")
	require.NoError(t, err)
	assert.Equal(t, "0", ruc.CheckDigit)
	assert.False(t, ruc.HasCheckDigit)
}

func TestParseRUC_DescartaNoDigitos(t *testing.T) {
	ruc, err := sifen.ParseRUC(" 800.123.45-6 ")
	require.NoError(t, err)
	assert.Equal(t, "80012345", ruc.Number)
}

func TestParseRUC_ErrorSinNumero(t *testing.T) {
	_, err := sifen.ParseRUC("-6")
	assert.Error(t, err)
	_, err = sifen.ParseRUC("")
	assert.Error(t, err)
}

// Vectores del módulo 11 SET (pesos 2..11 de derecha a izquierda).
func TestComputeRUCCheckDigit_Vectores(t *testing.T) {
	cases := map[string]byte{
		"80069563": '1',
		"80012345": '0',
		"1234567":  '9',
	}
	for number, want := range cases {
		got, err := sifen.ComputeRUCCheckDigit(number)
		require.NoError(t, err, number)
		assert.Equal(t, string(want), string(got), "RUC %s", number)
	}
}

func TestValidateRUCCheckDigit(t *testing.T) {
	assert.NoError(t, sifen.ValidateRUCCheckDigit("80069563-1"))
	assert.Error(t, sifen.ValidateRUCCheckDigit("80069563-2"))
	assert.Error(t, sifen.ValidateRUCCheckDigit("80069563"), "sin dígito verificador debe fallar")
}

func TestQRURL(t *testing.T) {
	assert.Equal(t, "https://ekuatia.set.gov.py/consultas/qr?nId=0180", sifen.QRURL("", "0180"))
	assert.Equal(t, "https://test.set.gov.py/consultas/qr?nId=0180", sifen.QRURL("https://test.set.gov.py/", "0180"))
}
