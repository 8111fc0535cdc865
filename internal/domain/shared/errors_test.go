package shared

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	validation := NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	rejection := NewBusinessRuleError(409, "INVALID_STATE", "Cannot delete a received order")
	transport := fmt.Errorf("%w: connection refused", ErrServiceUnavailable)

	assert.True(t, IsValidation(validation))
	assert.False(t, IsValidation(rejection))
	assert.False(t, IsValidation(transport))

	assert.True(t, IsBusinessRule(rejection))
	assert.False(t, IsBusinessRule(validation))

	assert.True(t, IsTransport(transport))
	assert.True(t, IsTransport(fmt.Errorf("%w: HTTP 502", ErrRequestFailed)))
	assert.True(t, IsTransport(fmt.Errorf("%w: truncated body", ErrInvalidResponse)))
	assert.False(t, IsTransport(validation))
}

func TestErrorMessages(t *testing.T) {
	err := NewDomainError("NO_ITEMS", "Cannot submit order without items")
	assert.Equal(t, "Cannot submit order without items", err.Error())
	assert.Equal(t, "NO_ITEMS", err.Code)

	rejection := NewBusinessRuleError(409, "INVALID_STATE", "rejected")
	assert.Equal(t, "rejected", rejection.Error())
	assert.Equal(t, 409, rejection.StatusCode)
}
