package sri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/courier-pro/pkg/sri"
)

func TestValidateCedula(t *testing.T) {
	// Cédulas con dígito verificador correcto (módulo 10).
	validas := []string{"1714610621", "0909258477", "0102030400"}
	for _, c := range validas {
		assert.NoError(t, sri.ValidateCedula(c), "cédula %s debe ser válida", c)
	}

	t.Run("dígito verificador incorrecto", func(t *testing.T) {
		assert.Error(t, sri.ValidateCedula("1714610622"))
	})
	t.Run("provincia fuera de rango", func(t *testing.T) {
		assert.Error(t, sri.ValidateCedula("2914610621"))
	})
	t.Run("longitud incorrecta", func(t *testing.T) {
		assert.Error(t, sri.ValidateCedula("171461062"))
	})
	t.Run("acepta separadores", func(t *testing.T) {
		assert.NoError(t, sri.ValidateCedula("171461062-1"))
	})
}

func TestValidateRUC(t *testing.T) {
	require.NoError(t, sri.ValidateRUC("1714610621001"))

	t.Run("establecimiento 000", func(t *testing.T) {
		assert.Error(t, sri.ValidateRUC("1714610621000"))
	})
	t.Run("cédula base inválida", func(t *testing.T) {
		assert.Error(t, sri.ValidateRUC("1714610629001"))
	})
	t.Run("longitud incorrecta", func(t *testing.T) {
		assert.Error(t, sri.ValidateRUC("17146106210"))
	})
}
