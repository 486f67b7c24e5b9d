package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/pkg/id"
	"github.com/go-blog-nosql/internal/pkg/validate"
)

// PageSize is the number of blogs in one page of the public listing.
const PageSize = 15

const (
	fieldTitle   = "title"
	fieldContent = "content"
	fieldTags    = "tags"
)

type Service interface {
	Create(ctx context.Context, profileID string, req domain.CreateBlogRequest) (*domain.Blog, error)
	Get(ctx context.Context, blogID string) (*domain.Blog, error)
	List(ctx context.Context, cursor string) ([]domain.Blog, string, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Blog, error)
	Update(ctx context.Context, profileID, blogID string, req domain.UpdateBlogRequest) (*domain.Blog, error)
	Delete(ctx context.Context, profileID, blogID string) error
}

type blogStore interface {
	Put(ctx context.Context, b *domain.Blog) error
	Get(ctx context.Context, blogID string) (*domain.Blog, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Blog, error)
	ListPublished(ctx context.Context, limit int32, cursor string) ([]domain.Blog, string, error)
	UpdateOwned(ctx context.Context, profileID, blogID string, updates map[string]interface{}) (*domain.Blog, error)
	DeleteOwned(ctx context.Context, profileID, blogID string) error
}

type service struct {
	repo blogStore
	now  func() time.Time
}

func NewService(repo blogStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, profileID string, req domain.CreateBlogRequest) (*domain.Blog, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Second)
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	b := &domain.Blog{
		BlogID:    id.New(),
		ProfileID: profileID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      tags,
		Published: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, b); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, blogID string) (*domain.Blog, error) {
	return s.repo.Get(ctx, blogID)
}

func (s *service) List(ctx context.Context, cursor string) ([]domain.Blog, string, error) {
	return s.repo.ListPublished(ctx, PageSize, cursor)
}

func (s *service) ListByProfile(ctx context.Context, profileID string) ([]domain.Blog, error) {
	return s.repo.ListByProfile(ctx, profileID)
}

func (s *service) Update(ctx context.Context, profileID, blogID string, req domain.UpdateBlogRequest) (*domain.Blog, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.UpdateOwned(ctx, profileID, blogID, map[string]interface{}{
		fieldTitle:   req.Title,
		fieldContent: req.Content,
		fieldTags:    req.Tags,
	})
}

func (s *service) Delete(ctx context.Context, profileID, blogID string) error {
	return s.repo.DeleteOwned(ctx, profileID, blogID)
}
