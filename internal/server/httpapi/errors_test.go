package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrMissingToken, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrInvalidCredentials, http.StatusBadRequest},
		{common.ErrInvalidResetHash, http.StatusBadRequest},
		{common.ErrExpiredResetHash, http.StatusBadRequest},
		{fmt.Errorf("%w: email is required", common.ErrorValidation), http.StatusBadRequest},
		{common.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("find user: %w", common.ErrorNotFound), http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	assert.Equal(t, ErrorBody{Error: common.ErrEmailTaken.Error(), Code: "EmailTaken"}, errorBody(common.ErrEmailTaken))
	assert.Equal(t, ErrorBody{Error: internalMessage, Code: "Internal"}, errorBody(errors.New("password=hunter2")))
}
