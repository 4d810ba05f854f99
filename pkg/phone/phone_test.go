package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("+44 7911 123456", "GB")
	assert.NoError(t, err)
	assert.Equal(t, "+447911123456", got)

	got, err = Normalize("07911 123456", "GB")
	assert.NoError(t, err)
	assert.Equal(t, "+447911123456", got)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize("not a phone", "GB")
	assert.Error(t, err)

	_, err = Normalize("", "GB")
	assert.Error(t, err)
}
