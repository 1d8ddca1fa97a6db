package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := NewAppError(TypeSubmission, "intake down", nil)
		assert.Equal(t, "SUBMISSION: intake down", err.Error())
	})

	t.Run("with underlying error", func(t *testing.T) {
		err := ErrTransport.WithError(errors.New("connection refused"))
		assert.Equal(t, "SUBMISSION: intake request failed (connection refused)", err.Error())
	})
}

func TestAppError_IsMatchesCopies(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := ErrTransport.WithError(cause).WithContext("endpoint", "https://intake.example")

	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))

	wrapped := fmt.Errorf("submit: %w", err)
	assert.True(t, errors.Is(wrapped, ErrTransport))
}

func TestAppError_WithContextDoesNotMutateOriginal(t *testing.T) {
	base := ErrInvalidConfig.WithContext("key", "capacity")
	derived := base.WithContext("value", 0)

	assert.Len(t, base.Context, 1)
	assert.Len(t, derived.Context, 2)
	assert.Nil(t, ErrInvalidConfig.Context)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeDecode, TypeOf(ErrUnsupportedImage.WithError(errors.New("heic"))))
	assert.Equal(t, TypeConfiguration, TypeOf(fmt.Errorf("wrap: %w", ErrIntakeUnavailable)))
	assert.Equal(t, TypeInternal, TypeOf(errors.New("plain")))
}
