package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/250words/internal/database"
	"github.com/yourusername/250words/internal/users"
	"github.com/yourusername/250words/internal/web"
)

// View はログイン中ユーザーを明示的な引数として受け取るハンドラーです。
// user が nil の場合は未ログインです。
type View func(c *gin.Context, user *users.User)

// LoadUser はセッションの user_id からユーザーを読み込むミドルウェアです。
// 全リクエストの前に1回だけ実行し、結果を gin.Context に保存します。
// 参照先のユーザーが削除済みの場合は未ログインとして扱います。
func (m *Manager) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user *users.User

		if userID, ok := sessionUserID(sessions.Default(c)); ok {
			found, err := users.NewRepository(database.From(c)).GetByID(c.Request.Context(), userID)
			switch {
			case err == nil:
				user = found
			case errors.Is(err, users.ErrNotFound):
				user = nil
			default:
				m.logger.Printf("failed to load session user id=%d: %v", userID, err)
				web.RenderError(c, http.StatusInternalServerError, nil)
				c.Abort()
				return
			}
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser は LoadUser が保存したユーザーを返します（未ログインなら nil）。
func CurrentUser(c *gin.Context) *users.User {
	user, _ := c.Get(ContextUserKey)
	u, _ := user.(*users.User)
	return u
}

// Handle は View を gin.HandlerFunc に変換し、ログイン中ユーザーを引数で渡します。
func Handle(view View) gin.HandlerFunc {
	return func(c *gin.Context) {
		view(c, CurrentUser(c))
	}
}

// LoginRequired は未ログインならログイン画面へリダイレクトし、view を実行しません。
// ルートのパスは登録側で決まるため、ラップしても view の公開パスは変わりません。
func LoginRequired(view View) View {
	return func(c *gin.Context, user *users.User) {
		if user == nil {
			c.Redirect(http.StatusFound, LoginPath)
			return
		}
		view(c, user)
	}
}
