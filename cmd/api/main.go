// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/250words/internal/auth"
	"github.com/yourusername/250words/internal/blog"
	"github.com/yourusername/250words/internal/config"
	"github.com/yourusername/250words/internal/database"
	"github.com/yourusername/250words/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.SecretKey == config.DevSecretKey {
		log.Printf("SECRET_KEY is not set; using the development key")
	}

	gin.SetMode(cfg.GinMode)
	logger := log.Default()

	if err := cfg.EnsureInstanceDir(); err != nil {
		log.Fatalf("Failed to create instance dir: %v", err)
	}
	db, err := database.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	limiter, err := setupLimiter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up login limiter: %v", err)
	}

	router, err := newRouter(cfg)
	if err != nil {
		log.Fatalf("Failed to configure router: %v", err)
	}
	router.Use(web.RequestLogger(logger), gin.Recovery())
	router.SetHTMLTemplate(web.Templates())

	// セッションストアの設定（署名付きCookie）
	store := auth.NewSessionStore([]byte(cfg.SecretKey), auth.SessionOptions{
		MaxAgeSeconds: cfg.SessionMaxAgeMinutes * 60,
		Secure:        cfg.GinMode == gin.ReleaseMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// リクエスト単位のDB接続とログインユーザーの読み込み
	authManager := auth.NewManager(limiter, logger)
	router.Use(database.Middleware(db, logger), authManager.LoadUser())

	setupRoutes(router, authManager, blog.NewHandler(logger))

	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s, database: %s)", addr, cfg.GinMode, cfg.DatabasePath())
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newRouter は信頼するプロキシを設定したエンジンを返します。
// TRUSTED_PROXIES が空なら X-Forwarded-For などは無視し、接続元アドレスを使います。
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	return router, nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "250words",
		"version": "0.1.0",
	})
}

// handlePing は疎通確認用のハンドラーです。
func handlePing(c *gin.Context) {
	c.String(http.StatusOK, "Ping successful")
}

// setupRoutes は公開エンドポイントと認証・ブログのルートを登録します。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, blogHandler *blog.Handler) {
	router.GET("/health", handleHealth)
	router.GET("/ping", handlePing)

	authManager.RegisterRoutes(router)
	blogHandler.RegisterRoutes(router)
}
