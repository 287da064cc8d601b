package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"gowelch/domain/core"
)

func TestWrap_ClassifiesCoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain", core.NewDomainError("StandardNormalInverse", 1), CodeDomainError, http.StatusBadRequest},
		{"validation", core.NewValidationError("group1.sample_size", "must be at least 2"), CodeInvalidInput, http.StatusBadRequest},
		{"not found", core.NewNotFoundError("analysis", "abc"), CodeNotFound, http.StatusNotFound},
		{"other", fmt.Errorf("boom"), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "analyze")
			assert.Equal(t, tt.code, GetCode(wrapped))
			assert.Equal(t, tt.status, HTTPStatus(wrapped))
			assert.True(t, stderrors.Is(wrapped, tt.err))
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "x"))
	assert.NoError(t, Wrapf(nil, "x %d", 1))
	assert.NoError(t, WithCode(CodeNotFound, nil))
}

func TestWrap_KeepsAppErrorCode(t *testing.T) {
	base := ConfigInvalid("PORT is required")
	wrapped := Wrapf(base, "load %s", "config")
	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "load config: PORT is required", wrapped.Error())
}

func TestGetCode_BareErrors(t *testing.T) {
	assert.Equal(t, CodeDomainError, GetCode(core.NewDomainError("Power", 2)))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeNotFound, GetCode(fmt.Errorf("lookup: %w", NotFound("analysis"))))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, fmt.Errorf("connection refused"))
	var appErr *AppError
	assert.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, "connection refused", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, CodeDatabaseError, GetCode(err))
}
