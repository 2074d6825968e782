package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origin string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origin))
	r.PATCH("/v1/services/abc", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSHeadersCoverAPIMethods(t *testing.T) {
	r := corsRouter("*")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/v1/services/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	// Record updates go through PATCH; the allowlist must advertise it.
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := corsRouter("https://pos.luisitrepair.mx")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/services/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pos.luisitrepair.mx", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSEmptyOriginDefaultsToWildcard(t *testing.T) {
	r := corsRouter("")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/services/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
