package auth

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/250words/internal/database"
	"github.com/yourusername/250words/internal/users"
	"github.com/yourusername/250words/internal/web"
)

// フォームに表示するメッセージ
const (
	MsgUsernameRequired = "Username is required."
	MsgPasswordRequired = "Password is required."
	MsgPasswordTooLong  = "Password is too long."
	MsgIncorrectUser    = "Incorrect username."
	MsgIncorrectPass    = "Incorrect password."
	MsgTooManyAttempts  = "Too many failed attempts. Please try again later."
)

// DuplicateUsernameMessage は登録済みユーザー名に対するメッセージを返します。
func DuplicateUsernameMessage(username string) string {
	return fmt.Sprintf("User %s is already registered.", username)
}

func renderForm(c *gin.Context, status int, name, title string, user *users.User, username, msg string) {
	page := web.Page(user, title)
	page["Username"] = username
	page["Error"] = msg
	c.HTML(status, name, page)
}

// RegisterForm は GET /auth/register のハンドラーです。
func (m *Manager) RegisterForm(c *gin.Context, user *users.User) {
	renderForm(c, http.StatusOK, "auth/register.html", "Register", user, "", "")
}

// Register は POST /auth/register のハンドラーです。
// 成功時はセッションを作らずにログイン画面へリダイレクトします。
func (m *Manager) Register(c *gin.Context, user *users.User) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var msg string
	if username == "" {
		msg = MsgUsernameRequired
	} else if password == "" {
		msg = MsgPasswordRequired
	}
	if msg != "" {
		renderForm(c, http.StatusBadRequest, "auth/register.html", "Register", user, username, msg)
		return
	}

	hash, err := HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			renderForm(c, http.StatusBadRequest, "auth/register.html", "Register", user, username, MsgPasswordTooLong)
			return
		}
		m.serverError(c, user, "failed to hash password", err)
		return
	}

	repo := users.NewRepository(database.From(c))
	if _, err := repo.Create(c.Request.Context(), username, hash); err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			renderForm(c, http.StatusConflict, "auth/register.html", "Register", user, username, DuplicateUsernameMessage(username))
			return
		}
		m.serverError(c, user, "failed to register user", err)
		return
	}

	c.Redirect(http.StatusFound, LoginPath)
}

// LoginForm は GET /auth/login のハンドラーです。
func (m *Manager) LoginForm(c *gin.Context, user *users.User) {
	renderForm(c, http.StatusOK, "auth/login.html", "Log In", user, "", "")
}

// Login は POST /auth/login のハンドラーです。
// 失敗時はセッションに触れず、成功時はセッションを作り直します。
func (m *Manager) Login(c *gin.Context, user *users.User) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	ctx := c.Request.Context()

	ip := c.ClientIP()
	retryAfter, err := m.limiter.Check(ctx, ip)
	if err != nil {
		// 試行回数ストアの障害ではログインを止めない
		m.logger.Printf("failed to check login attempts ip=%s: %v", ip, err)
	}
	if retryAfter > 0 {
		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		renderForm(c, http.StatusTooManyRequests, "auth/login.html", "Log In", user, username, MsgTooManyAttempts)
		return
	}

	found, err := users.NewRepository(database.From(c)).GetByUsername(ctx, username)
	var msg string
	switch {
	case errors.Is(err, users.ErrNotFound):
		msg = MsgIncorrectUser
	case err != nil:
		m.serverError(c, user, "failed to look up user", err)
		return
	case !CheckPassword(found.PasswordHash, password):
		msg = MsgIncorrectPass
	}

	if msg != "" {
		if _, err := m.limiter.RecordFailure(ctx, ip); err != nil {
			m.logger.Printf("failed to record login failure ip=%s: %v", ip, err)
		}
		renderForm(c, http.StatusUnauthorized, "auth/login.html", "Log In", user, username, msg)
		return
	}

	if err := m.limiter.Reset(ctx, ip); err != nil {
		m.logger.Printf("failed to reset login attempts ip=%s: %v", ip, err)
	}

	if err := startSession(sessions.Default(c), found.ID); err != nil {
		m.serverError(c, user, "failed to save session", err)
		return
	}

	c.Redirect(http.StatusFound, IndexPath)
}

// retryAfterSeconds は Retry-After ヘッダー用に残り時間を秒単位で切り上げます。
func retryAfterSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(math.Ceil(d.Seconds())), 10)
}

// Logout は GET /auth/logout のハンドラーです。ログイン状態に関係なくセッションを破棄します。
func (m *Manager) Logout(c *gin.Context) {
	if err := endSession(sessions.Default(c)); err != nil {
		m.serverError(c, CurrentUser(c), "failed to clear session", err)
		return
	}
	c.Redirect(http.StatusFound, IndexPath)
}
