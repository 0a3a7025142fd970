package httpapi

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"blogserver/internal/common"
	"blogserver/internal/dbx"
	"blogserver/internal/logging"
	"blogserver/internal/server/config"
	"blogserver/internal/server/models"
	postsrepo "blogserver/internal/server/repositories/posts"
	usersrepo "blogserver/internal/server/repositories/users"
	"blogserver/internal/server/services"
)

// In-memory repositories backing the HTTP tests, with the same sentinel and
// compare-and-swap behavior as the Postgres implementations.

type fakeUsersRepo struct {
	byEmail map[string]*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	u.ID = "user-" + u.Email
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) SetRefreshToken(ctx context.Context, email, token string) error {
	u, ok := f.byEmail[email]
	if !ok {
		return common.ErrNotFound
	}
	u.RefreshToken = sql.NullString{String: token, Valid: true}
	return nil
}

func (f *fakeUsersRepo) RotateRefreshToken(ctx context.Context, email, oldToken, newToken string) error {
	u, ok := f.byEmail[email]
	if !ok || !u.RefreshToken.Valid || u.RefreshToken.String != oldToken {
		return common.ErrRefreshTokenMismatch
	}
	u.RefreshToken = sql.NullString{String: newToken, Valid: true}
	return nil
}

func (f *fakeUsersRepo) ClearRefreshToken(ctx context.Context, email string) error {
	if u, ok := f.byEmail[email]; ok {
		u.RefreshToken = sql.NullString{}
	}
	return nil
}

type fakePostsRepo struct {
	posts []*models.Post
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.posts = append(f.posts, p)
	return p, nil
}

func (f *fakePostsRepo) List(ctx context.Context) ([]*models.Post, error) {
	out := make([]*models.Post, 0, len(f.posts))
	for i := len(f.posts) - 1; i >= 0; i-- {
		cp := *f.posts[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakePostsRepo) Update(ctx context.Context, post *models.Post) error {
	for _, p := range f.posts {
		if p.ID == post.ID {
			p.Title = post.Title
			p.Subtitle = post.Subtitle
			p.Content = post.Content
			p.ImageURL = post.ImageURL
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakePostsRepo) Delete(ctx context.Context, id string) error {
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePostsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository      { return m.p }

type fakeImageStore struct {
	uploadErr error
}

func (f *fakeImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "http://images.local/" + filename, nil
}

// testEnv bundles a fully wired echo instance over in-memory state.
type testEnv struct {
	e      *echo.Echo
	mock   sqlmock.Sqlmock
	users  *fakeUsersRepo
	posts  *fakePostsRepo
	images *fakeImageStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		EndpointAddr:                 ":0",
		AccessTokenSecret:            "access-k",
		RefreshTokenSecret:           "refresh-k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		AllowedOrigins:               []string{"http://localhost:5173"},
	}

	users := &fakeUsersRepo{byEmail: make(map[string]*models.User)}
	posts := &fakePostsRepo{}
	images := &fakeImageStore{}
	rm := &fakeRepoManager{u: users, p: posts}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	us := services.NewUserService(db, rm, cfg)
	ps := services.NewPostService(db, rm, images)

	srv, err := NewHTTPServer(cfg, logger, us, ps)
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}

	return &testEnv{e: srv.routes(), mock: mock, users: users, posts: posts, images: images}
}
