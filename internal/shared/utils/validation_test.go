package utils

import (
	stderrors "errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/leasebot/internal/shared/errors"
)

type bindTarget struct {
	Username string `json:"username" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,oneof=INR USD"`
}

func TestBindingError_ListsFailedFields(t *testing.T) {
	err := validator.New().Struct(bindTarget{Currency: "EUR"})
	require.Error(t, err)

	appErr := errors.GetAppError(BindingError(err))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "Username is required; Currency must be one of [INR USD]", appErr.Details)
}

func TestBindingError_MalformedBody(t *testing.T) {
	appErr := errors.GetAppError(BindingError(stderrors.New("unexpected EOF")))
	require.NotNil(t, appErr)
	assert.Equal(t, "invalid request body", appErr.Message)
	assert.Equal(t, "unexpected EOF", appErr.Details)
}
