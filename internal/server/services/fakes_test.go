package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"blogserver/internal/common"
	"blogserver/internal/dbx"
	"blogserver/internal/server/config"
	"blogserver/internal/server/models"
	postsrepo "blogserver/internal/server/repositories/posts"
	usersrepo "blogserver/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access-k",
		RefreshTokenSecret:           "refresh-k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

// fakeUsersRepo is an in-memory credential store keyed by email, with the
// same compare-and-swap semantics as the Postgres implementation.
type fakeUsersRepo struct {
	byEmail map[string]*models.User

	createErr error
	setErr    error
	rotateErr error
	clearErr  error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
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
	if f.setErr != nil {
		return f.setErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return common.ErrNotFound
	}
	u.RefreshToken = sql.NullString{String: token, Valid: true}
	return nil
}

func (f *fakeUsersRepo) RotateRefreshToken(ctx context.Context, email, oldToken, newToken string) error {
	if f.rotateErr != nil {
		return f.rotateErr
	}
	u, ok := f.byEmail[email]
	if !ok || !u.RefreshToken.Valid || u.RefreshToken.String != oldToken {
		return common.ErrRefreshTokenMismatch
	}
	u.RefreshToken = sql.NullString{String: newToken, Valid: true}
	return nil
}

func (f *fakeUsersRepo) ClearRefreshToken(ctx context.Context, email string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	if u, ok := f.byEmail[email]; ok {
		u.RefreshToken = sql.NullString{}
	}
	return nil
}

// fakePostsRepo is an in-memory post store preserving insertion order.
type fakePostsRepo struct {
	posts []*models.Post

	createErr error
	updateErr error
	deleteErr error
}

func newFakePostsRepo() *fakePostsRepo {
	return &fakePostsRepo{}
}

func (f *fakePostsRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
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
	if f.updateErr != nil {
		return f.updateErr
	}
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
	if f.deleteErr != nil {
		return f.deleteErr
	}
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

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository       { return m.p }
