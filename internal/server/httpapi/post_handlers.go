package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"blogserver/internal/server/models"
	"blogserver/internal/server/services"
)

type postResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func postView(p *models.Post) postResponse {
	return postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		Content:     p.Content,
		ImageURL:    p.ImageURL,
		Author:      p.AuthorName,
		AuthorEmail: p.AuthorEmail,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func draftFromForm(c echo.Context) services.PostDraft {
	return services.PostDraft{
		Title:    c.FormValue("title"),
		Subtitle: c.FormValue("subtitle"),
		Content:  c.FormValue("content"),
	}
}

// imageFromForm extracts the optional `file` multipart part. The caller must
// invoke the returned closer. A missing part yields a nil upload; the
// services decide whether that is acceptable.
func imageFromForm(c echo.Context) (*services.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, noop, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}

	return &services.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        src,
	}, func() { src.Close() }, nil
}

func (s *HTTPServer) createPost(c echo.Context) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
	}

	image, closeImage, err := imageFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid file upload"})
	}
	defer closeImage()

	post, err := s.posts.Create(c.Request().Context(), identity, draftFromForm(c), image)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"post":   postView(post),
	})
}

func (s *HTTPServer) getPosts(c echo.Context) error {
	posts, err := s.posts.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	views := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		// The list view carries the author name only.
		p.AuthorEmail = ""
		views = append(views, postView(p))
	}
	return c.JSON(http.StatusOK, views)
}

func (s *HTTPServer) getPostByID(c echo.Context) error {
	post, err := s.posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, postView(post))
}

func (s *HTTPServer) editPost(c echo.Context) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
	}

	image, closeImage, err := imageFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid file upload"})
	}
	defer closeImage()

	post, err := s.posts.Update(c.Request().Context(), identity, c.Param("id"), draftFromForm(c), image)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, postView(post))
}

func (s *HTTPServer) deletePost(c echo.Context) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
	}

	if err := s.posts.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
