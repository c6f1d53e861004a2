// Package auth は登録・ログイン・ログアウトとセッションによるアクセス制御を提供します。
package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/250words/internal/users"
	"github.com/yourusername/250words/internal/web"
)

const (
	// IndexPath はログイン成功・ログアウト後の遷移先です。
	IndexPath = "/"
	// LoginPath はログイン画面のパスです。未ログイン時のリダイレクト先にもなります。
	LoginPath = "/auth/login"
	// RegisterPath は登録画面のパスです。
	RegisterPath = "/auth/register"
	// LogoutPath はログアウトのパスです。
	LogoutPath = "/auth/logout"
)

// ContextUserKey は、ハンドラー間でログイン中ユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	limiter AttemptLimiter
	logger  *log.Logger
}

// NewManager は認証マネージャーを作成します。
// limiter が nil の場合はログイン試行制限を行いません。
func NewManager(limiter AttemptLimiter, logger *log.Logger) *Manager {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		limiter: limiter,
		logger:  logger,
	}
}

// RegisterRoutes は /auth 以下のルートを登録します。
func (m *Manager) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/auth")
	{
		group.GET("/register", Handle(m.RegisterForm))
		group.POST("/register", Handle(m.Register))
		group.GET("/login", Handle(m.LoginForm))
		group.POST("/login", Handle(m.Login))
		group.GET("/logout", m.Logout)
	}
}

func (m *Manager) serverError(c *gin.Context, user *users.User, msg string, err error) {
	m.logger.Printf("%s: %v", msg, err)
	web.RenderError(c, http.StatusInternalServerError, user)
}
