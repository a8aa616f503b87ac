package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"channelhub/domain/model"
)

func TestWriteError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation error", &model.ValidationError{Field: "platform", Reason: "unsupported"}, http.StatusBadRequest},
		{"platform not connected", model.ErrNotConnected, http.StatusConflict},
		{"unknown sub-account", mongo.ErrNoDocuments, http.StatusNotFound},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tc.err)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}
