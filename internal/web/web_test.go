package web

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestTemplatesDefinePages(t *testing.T) {
	tmpl := Templates()
	for _, name := range []string{
		"header",
		"footer",
		"error",
		"auth/register.html",
		"auth/login.html",
		"blog/index.html",
		"blog/create.html",
		"blog/update.html",
	} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("template %q is not defined", name)
		}
	}
}

func TestRenderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(Templates())
	router.GET("/", func(c *gin.Context) {
		RenderError(c, http.StatusForbidden, nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Forbidden") {
		t.Fatalf("expected status text in body: %s", rec.Body.String())
	}
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(RequestLogger(log.New(&buf, "", 0)))

	var seen string
	router.GET("/ping", func(c *gin.Context) {
		seen = c.GetString(ContextRequestIDKey)
		c.String(http.StatusOK, "ok")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid request id, got %q", id)
	}
	if seen != id {
		t.Fatalf("context id %q != header id %q", seen, id)
	}
	out := buf.String()
	if !strings.Contains(out, "request_id="+id) || !strings.Contains(out, "path=/ping") || !strings.Contains(out, "status=200") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(log.New(&bytes.Buffer{}, "", 0)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("unexpected request id: %q", got)
	}
}
