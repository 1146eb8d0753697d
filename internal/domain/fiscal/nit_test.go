package fiscal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Pos-api/internal/domain/fiscal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dígito de verificación del NIT (módulo 11, pesos DIAN). Los vectores se
// calcularon a mano: 900123456 → 8, 800197268 → 4 (NIT de la propia DIAN),
// 830114921 → 1 (residuo 1, rama directa sin resta).
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateNIT_DigitoCorrecto(t *testing.T) {
	// Caso 1: el mismo NIT en los tres formatos aceptados.
	assert.NoError(t, fiscal.ValidateNIT("900123456-8"))
	assert.NoError(t, fiscal.ValidateNIT("900.123.456-8"))
	assert.NoError(t, fiscal.ValidateNIT("9001234568"))
}

func TestValidateNIT_DigitoIncorrecto(t *testing.T) {
	// Caso 2: dígito de verificación equivocado.
	err := fiscal.ValidateNIT("900123456-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esperado 8")
}

func TestValidateNIT_Incompleto(t *testing.T) {
	// Caso 3: menos de 9 dígitos.
	err := fiscal.ValidateNIT("12345")
	require.Error(t, err, "un NIT de 5 dígitos no es válido")

	// Caso 4: 9 dígitos sin dígito de verificación.
	err = fiscal.ValidateNIT("900123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dígito de verificación")
}

func TestComputeNITCheckDigit(t *testing.T) {
	cases := []struct {
		nit      string
		expected byte
	}{
		{"900123456", '8'},
		{"800197268", '4'},
		{"830114921", '1'}, // residuo 1: el dígito es el residuo mismo
	}
	for _, tc := range cases {
		dv, err := fiscal.ComputeNITCheckDigit(tc.nit)
		require.NoError(t, err, "NIT %s", tc.nit)
		assert.Equal(t, tc.expected, dv, "dígito de verificación de %s", tc.nit)
	}
}

func TestComputeNITCheckDigit_MuyCorto(t *testing.T) {
	_, err := fiscal.ComputeNITCheckDigit("123")
	require.Error(t, err)
}
