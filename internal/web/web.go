// Package web は HTML テンプレートと共通ミドルウェアを提供します。
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed templates
var templateFS embed.FS

// RequestIDHeader はリクエストIDを受け渡すヘッダー名です。
const RequestIDHeader = "X-Request-Id"

// ContextRequestIDKey は gin.Context にリクエストIDを保存するキーです。
const ContextRequestIDKey = "web.request_id"

// Templates は埋め込みテンプレートをすべて読み込みます。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS,
		"templates/*.html",
		"templates/auth/*.html",
		"templates/blog/*.html",
	))
}

// Page はテンプレート共通のデータを組み立てます。
// user は *users.User（未ログインなら nil）を想定しています。
func Page(user any, title string) gin.H {
	return gin.H{
		"User":  user,
		"Title": title,
		"Error": "",
	}
}

// RenderError はエラーページを返します。
func RenderError(c *gin.Context, status int, user any) {
	page := Page(user, http.StatusText(status))
	c.HTML(status, "error", page)
}

// RequestLogger はリクエストIDを付与し、アクセスログを出力するミドルウェアです。
func RequestLogger(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.Printf("request_id=%s method=%s path=%s status=%d latency=%s client=%s",
			requestID,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}
