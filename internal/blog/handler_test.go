package blog

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/250words/internal/auth"
	"github.com/yourusername/250words/internal/database"
	"github.com/yourusername/250words/internal/users"
	"github.com/yourusername/250words/internal/web"
)

type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func newRouter(t *testing.T, db *sql.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)

	manager := auth.NewManager(nil, logger)
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	router.Use(
		sessions.Sessions(auth.SessionCookieName, auth.NewSessionStore([]byte("test-secret"), auth.SessionOptions{MaxAgeSeconds: 3600})),
		database.Middleware(db, logger),
		manager.LoadUser(),
	)
	manager.RegisterRoutes(router)
	NewHandler(logger).RegisterRoutes(router)
	return router
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return rec
}

func registerAndLogin(t *testing.T, db *sql.DB, router *gin.Engine, username string) (*browser, *users.User) {
	t.Helper()
	hash, err := auth.HashPassword("pw")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := users.NewRepository(db).Create(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	b := &browser{t: t, router: router}
	rec := b.do(http.MethodPost, auth.LoginPath, url.Values{"username": {username}, "password": {"pw"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return b, user
}

func TestIndexIsPublic(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	alice := createUser(t, db, "alice")
	if _, err := NewRepository(db).Create(context.Background(), alice.ID, "Hello", "first post"); err != nil {
		t.Fatalf("create post: %v", err)
	}

	anon := &browser{t: t, router: router}
	rec := anon.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hello") || !strings.Contains(body, "by alice") {
		t.Fatalf("post missing from index: %s", body)
	}
	if strings.Contains(body, "/create") {
		t.Fatal("anonymous index must not offer the create link")
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	anon := &browser{t: t, router: router}

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := anon.do(method, "/create", url.Values{"title": {"x"}, "body": {"y"}})
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != auth.LoginPath {
			t.Fatalf("%s /create: unexpected response %d %q", method, rec.Code, rec.Header().Get("Location"))
		}
	}

	posts, err := NewRepository(db).List(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("anonymous create inserted posts: %d", len(posts))
	}
}

func TestCreatePost(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	b, alice := registerAndLogin(t, db, router, "alice")

	rec := b.do(http.MethodPost, "/create", url.Values{"title": {"  "}, "body": {"text"}})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), MsgTitleRequired) {
		t.Fatalf("expected title validation: %d %s", rec.Code, rec.Body.String())
	}

	rec = b.do(http.MethodPost, "/create", url.Values{"title": {"Day one"}, "body": {"text"}})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("unexpected response: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	posts, err := NewRepository(db).List(context.Background())
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Day one" || posts[0].AuthorID != alice.ID {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestUpdateAndDeleteOwnPost(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	b, alice := registerAndLogin(t, db, router, "alice")
	repo := NewRepository(db)
	id, err := repo.Create(context.Background(), alice.ID, "Draft", "body")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	path := "/" + strconv.FormatInt(id, 10)

	rec := b.do(http.MethodGet, path+"/update", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Draft") {
		t.Fatalf("unexpected update form: %d %s", rec.Code, rec.Body.String())
	}

	rec = b.do(http.MethodPost, path+"/update", url.Values{"title": {"Final"}, "body": {"done"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}
	post, err := repo.Get(context.Background(), id)
	if err != nil || post.Title != "Final" || post.Body != "done" {
		t.Fatalf("post not updated: %+v err=%v", post, err)
	}

	rec = b.do(http.MethodPost, path+"/delete", url.Values{})
	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if _, err := repo.Get(context.Background(), id); err != ErrNotFound {
		t.Fatalf("post not deleted: %v", err)
	}
}

func TestOtherUsersPostIsForbidden(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	alice := createUser(t, db, "alice")
	repo := NewRepository(db)
	id, err := repo.Create(context.Background(), alice.ID, "Mine", "body")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	bob, _ := registerAndLogin(t, db, router, "bob")
	path := "/" + strconv.FormatInt(id, 10)

	if rec := bob.do(http.MethodGet, path+"/update", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec := bob.do(http.MethodPost, path+"/delete", url.Values{}); rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if _, err := repo.Get(context.Background(), id); err != nil {
		t.Fatalf("post should still exist: %v", err)
	}
}

func TestMissingPostIsNotFound(t *testing.T) {
	db := openTestDB(t)
	router := newRouter(t, db)
	b, _ := registerAndLogin(t, db, router, "alice")

	for _, path := range []string{"/999/update", "/abc/update"} {
		if rec := b.do(http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: unexpected status %d", path, rec.Code)
		}
	}
}
