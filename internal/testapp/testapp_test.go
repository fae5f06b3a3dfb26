package testapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForm(t *testing.T) {
	assert.Equal(t, "email=ursula_le_guin%40gmail.com&name=le+guin", Form("le guin", "ursula_le_guin@gmail.com"))
	assert.Equal(t, "name=le+guin", Form("le guin", ""))
	assert.Equal(t, "", Form("", ""))
}
