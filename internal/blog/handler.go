package blog

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/250words/internal/auth"
	"github.com/yourusername/250words/internal/database"
	"github.com/yourusername/250words/internal/users"
	"github.com/yourusername/250words/internal/web"
)

// MsgTitleRequired はタイトル未入力時のメッセージです。
const MsgTitleRequired = "Title is required."

// Handler はブログ画面のハンドラーをまとめます。
type Handler struct {
	logger *log.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{logger: logger}
}

// RegisterRoutes は一覧（公開）と作成・編集・削除（要ログイン）のルートを登録します。
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", auth.Handle(h.Index))
	router.GET("/create", auth.Handle(auth.LoginRequired(h.CreateForm)))
	router.POST("/create", auth.Handle(auth.LoginRequired(h.Create)))
	router.GET("/:id/update", auth.Handle(auth.LoginRequired(h.UpdateForm)))
	router.POST("/:id/update", auth.Handle(auth.LoginRequired(h.Update)))
	router.POST("/:id/delete", auth.Handle(auth.LoginRequired(h.Delete)))
}

type postForm struct {
	Title string
	Body  string
}

func readForm(c *gin.Context) postForm {
	return postForm{
		Title: strings.TrimSpace(c.PostForm("title")),
		Body:  c.PostForm("body"),
	}
}

// Index は GET / のハンドラーです。
func (h *Handler) Index(c *gin.Context, user *users.User) {
	posts, err := NewRepository(database.From(c)).List(c.Request.Context())
	if err != nil {
		h.serverError(c, user, "failed to list posts", err)
		return
	}
	page := web.Page(user, "Posts")
	page["Posts"] = posts
	c.HTML(http.StatusOK, "blog/index.html", page)
}

// CreateForm は GET /create のハンドラーです。
func (h *Handler) CreateForm(c *gin.Context, user *users.User) {
	h.renderEditor(c, http.StatusOK, "blog/create.html", user, nil, postForm{}, "")
}

// Create は POST /create のハンドラーです。
func (h *Handler) Create(c *gin.Context, user *users.User) {
	form := readForm(c)
	if form.Title == "" {
		h.renderEditor(c, http.StatusBadRequest, "blog/create.html", user, nil, form, MsgTitleRequired)
		return
	}

	if _, err := NewRepository(database.From(c)).Create(c.Request.Context(), user.ID, form.Title, form.Body); err != nil {
		h.serverError(c, user, "failed to create post", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// UpdateForm は GET /:id/update のハンドラーです。
func (h *Handler) UpdateForm(c *gin.Context, user *users.User) {
	post, ok := h.loadOwnPost(c, user)
	if !ok {
		return
	}
	h.renderEditor(c, http.StatusOK, "blog/update.html", user, post, postForm{Title: post.Title, Body: post.Body}, "")
}

// Update は POST /:id/update のハンドラーです。
func (h *Handler) Update(c *gin.Context, user *users.User) {
	post, ok := h.loadOwnPost(c, user)
	if !ok {
		return
	}

	form := readForm(c)
	if form.Title == "" {
		h.renderEditor(c, http.StatusBadRequest, "blog/update.html", user, post, form, MsgTitleRequired)
		return
	}

	if err := NewRepository(database.From(c)).Update(c.Request.Context(), post.ID, form.Title, form.Body); err != nil {
		h.serverError(c, user, "failed to update post", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Delete は POST /:id/delete のハンドラーです。
func (h *Handler) Delete(c *gin.Context, user *users.User) {
	post, ok := h.loadOwnPost(c, user)
	if !ok {
		return
	}
	if err := NewRepository(database.From(c)).Delete(c.Request.Context(), post.ID); err != nil {
		h.serverError(c, user, "failed to delete post", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// loadOwnPost は :id の投稿を取得し、作成者本人であることを確認します。
// 失敗時はレスポンスを書き込んで false を返します。
func (h *Handler) loadOwnPost(c *gin.Context, user *users.User) (*Post, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		web.RenderError(c, http.StatusNotFound, user)
		return nil, false
	}

	post, err := NewRepository(database.From(c)).Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			web.RenderError(c, http.StatusNotFound, user)
			return nil, false
		}
		h.serverError(c, user, "failed to load post", err)
		return nil, false
	}

	if post.AuthorID != user.ID {
		web.RenderError(c, http.StatusForbidden, user)
		return nil, false
	}
	return post, true
}

func (h *Handler) renderEditor(c *gin.Context, status int, name string, user *users.User, post *Post, form postForm, msg string) {
	title := "New Post"
	if post != nil {
		title = "Edit " + post.Title
	}
	page := web.Page(user, title)
	page["Post"] = post
	page["Form"] = form
	page["Error"] = msg
	c.HTML(status, name, page)
}

func (h *Handler) serverError(c *gin.Context, user *users.User, msg string, err error) {
	h.logger.Printf("%s: %v", msg, err)
	web.RenderError(c, http.StatusInternalServerError, user)
}
