package models

import "time"

// Post is a blog entry. AuthorID references the user that created it and
// never changes afterwards.
//
// AuthorName and AuthorEmail are filled by joined read queries; they are not
// columns of the posts table.
type Post struct {
	ID        string
	Title     string
	Subtitle  string
	Content   string
	ImageURL  string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorName  string
	AuthorEmail string
}
