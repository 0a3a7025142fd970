package posts

import (
	"context"

	"blogserver/internal/server/models"
)

// Repository persists blog posts. Read methods return posts with the author
// fields joined in; mutations operate on the posts table only.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}
