package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullableMapsEmptyToNull(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Nil(t, nullable("   "))
	assert.Equal(t, "x", nullable("x"))
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(errors.New("Error 1062 (23000): Duplicate entry '777'")))
	assert.False(t, isDuplicate(errors.New("Error 1048 (23000): Column 'nombre' cannot be null")))
	assert.False(t, isDuplicate(nil))
}

func TestUpdatableFieldsExcludeStamps(t *testing.T) {
	assert.False(t, updatableFields["fecha_confirmacion"])
	assert.False(t, updatableFields["fecha_cancelacion"])
	assert.False(t, updatableFields["id"])
	assert.False(t, updatableFields["creado_en"])
	assert.True(t, updatableFields["estado"])
	assert.True(t, updatableFields["notas"])
}
