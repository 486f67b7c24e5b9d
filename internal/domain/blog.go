package domain

import "time"

// Blog is a post owned by a profile. Published is stored as a number so it
// can key the newest-first listing index.
type Blog struct {
	BlogID    string    `json:"id" dynamodbav:"blog_id"`
	ProfileID string    `json:"profileId" dynamodbav:"profile_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Content   string    `json:"content" dynamodbav:"content"`
	Tags      []string  `json:"tags" dynamodbav:"tags"`
	Published int       `json:"published" dynamodbav:"published"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateBlogRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
}

type UpdateBlogRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"required"`
}
