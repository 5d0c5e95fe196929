package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	cases := map[string]string{
		"":                       "en",
		"zh-TW,zh;q=0.9,en;q=0.8": "zh_TW",
		"zh-Hant":                "zh_TW",
		"en-GB":                  "en",
		"fr-FR,fr;q=0.9":         "en",
	}
	for header, want := range cases {
		assert.Equal(t, want, ParseLanguage(header), header)
	}
}

func TestRequestIDIsAssignedOrPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		id, _ := c.Get("request_id")
		c.String(http.StatusOK, id.(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", existing)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, existing, w.Body.String())
}
