package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelapp/internal/domain"
)

type sample struct {
	Email string `validate:"required,email"`
	Count int    `validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Email: "a@b.co", Count: 1}))

	errs := Validate(sample{Email: "nope"})
	assert.Equal(t, "email", errs["Email"])
	assert.Equal(t, "gte", errs["Count"])
}

func TestCheck(t *testing.T) {
	err := Check(sample{Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Count (gte), Email (email)")
}
