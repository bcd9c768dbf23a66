package utils

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGinLoggerWritesRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	InitLoggerTo(&buf, "info", false)
	defer InitLoggerTo(&bytes.Buffer{}, "info", false)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(RequestIDKey, "req-1"); c.Next() })
	r.Use(GinLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"path":"/missing"`, `"status_code":404`, `"request_id":"req-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestNewNullString(t *testing.T) {
	if NewNullString("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
	if got := NewNullString(" Rua A "); got == nil || *got != "Rua A" {
		t.Fatalf("unexpected value %v", got)
	}
}
