package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"blogserver/internal/common"
	"blogserver/internal/server/auth"
	"blogserver/internal/server/models"
	"blogserver/internal/server/repositories/repomanager"
	"blogserver/internal/server/storage"
	"github.com/google/uuid"
)

// PostDraft carries the user-editable fields of a post.
type PostDraft struct {
	Title    string
	Subtitle string
	Content  string
}

// ImageUpload is an incoming image file. A nil *ImageUpload means no file
// was sent.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// PostService handles post CRUD. Mutations require the acting identity to
// own the target post.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      storage.ImageStore
}

// NewPostService constructs a PostService.
func NewPostService(db *sql.DB, m repomanager.RepositoryManager, images storage.ImageStore) *PostService {
	return &PostService{db: db, repomanager: m, images: images}
}

// canMutate reports whether the acting identity owns the post: the post's
// recorded author email must equal the identity's email.
func canMutate(identity auth.Identity, post *models.Post) bool {
	return post.AuthorEmail == identity.Email
}

func validateDraft(draft PostDraft) error {
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return fmt.Errorf("%w: title and content are required", common.ErrValidation)
	}
	return nil
}

// Create uploads the image, then persists the post. The image is required;
// a failed upload aborts the request before anything is written.
func (s *PostService) Create(ctx context.Context, identity auth.Identity, draft PostDraft, image *ImageUpload) (*models.Post, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", common.ErrValidation)
	}

	author, err := s.repomanager.Users(s.db).GetByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading author: %w", err)
	}

	imageURL, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Body)
	if err != nil {
		return nil, fmt.Errorf("error uploading image: %w", err)
	}

	post := &models.Post{
		ID:       uuid.NewString(),
		Title:    draft.Title,
		Subtitle: draft.Subtitle,
		Content:  draft.Content,
		ImageURL: imageURL,
		AuthorID: author.ID,
	}

	post, err = s.repomanager.Posts(s.db).Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	post.AuthorName = author.Username
	post.AuthorEmail = author.Email
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*models.Post, error) {
	result, err := s.repomanager.Posts(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return result, nil
}

// GetByID returns a single post with author fields. A malformed id is
// indistinguishable from an absent post.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}

	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	return post, nil
}

// Update edits a post owned by the acting identity. A replacement image is
// optional; when present its upload precedes the write and a failure aborts
// the edit.
func (s *PostService) Update(ctx context.Context, identity auth.Identity, id string, draft PostDraft, image *ImageUpload) (*models.Post, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Existence is revealed; authorization is denied explicitly.
	if !canMutate(identity, post) {
		return nil, common.ErrForbidden
	}

	post.Title = draft.Title
	post.Subtitle = draft.Subtitle
	post.Content = draft.Content

	if image != nil {
		imageURL, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return nil, fmt.Errorf("error uploading image: %w", err)
		}
		post.ImageURL = imageURL
	}

	if err := s.repomanager.Posts(s.db).Update(ctx, post); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	return post, nil
}

// Delete removes a post owned by the acting identity.
func (s *PostService) Delete(ctx context.Context, identity auth.Identity, id string) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !canMutate(identity, post) {
		return common.ErrForbidden
	}

	if err := s.repomanager.Posts(s.db).Delete(ctx, post.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error deleting post: %w", err)
	}
	return nil
}
