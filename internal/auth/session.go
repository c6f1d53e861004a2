package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
)

const (
	SessionCookieName = "session"
	sessionKeyUserID  = "user_id"
)

// SessionOptions はセッションCookieの発行設定です。
type SessionOptions struct {
	MaxAgeSeconds int
	Secure        bool
}

// NewSessionStore は署名付きCookieのセッションストアを作成します。
func NewSessionStore(secret []byte, opts SessionOptions) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAgeSeconds,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// sessionUserID はセッションに保存された user_id を読み出します。
func sessionUserID(session sessions.Session) (int64, bool) {
	switch v := session.Get(sessionKeyUserID).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// startSession はセッションの中身を破棄してから user_id だけを設定します。
func startSession(session sessions.Session, userID int64) error {
	session.Clear()
	session.Set(sessionKeyUserID, userID)
	return session.Save()
}

// endSession はセッションの中身をすべて破棄します。
func endSession(session sessions.Session) error {
	session.Clear()
	return session.Save()
}
