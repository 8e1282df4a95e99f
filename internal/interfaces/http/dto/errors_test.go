package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	t.Run("maps known codes", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, GetHTTPStatus("NOT_FOUND"))
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("VALIDATION_ERROR"))
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("ILLEGAL_TRANSITION"))
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("UNBALANCED_JOURNAL"))
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("UNKNOWN_CURRENCY"))
		assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("INSUFFICIENT_STOCK"))
		assert.Equal(t, http.StatusConflict, GetHTTPStatus("DUPLICATE_CONVERSION"))
	})

	t.Run("defaults to internal server error", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
	})
}
