package user

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldImage     = "image"
)

// imageTypes maps accepted image content types to the key extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UpdateProfileInput carries the optional parts of a profile update.
// Image is nil when no file was sent.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Image     io.Reader
}

type Service interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.Profile, error)
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) (*domain.Profile, error)
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type ServiceDeps struct {
	ProfileRepo profileStore
	Images      imageStore
}

type service struct {
	profiles profileStore
	images   imageStore
}

func NewService(deps ServiceDeps) Service {
	return &service{profiles: deps.ProfileRepo, images: deps.Images}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.Profile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		if strings.TrimSpace(*in.FirstName) == "" {
			return nil, &domain.ValidationError{Fields: []string{"firstName must not be empty"}}
		}
		updates[fieldFirstName] = *in.FirstName
	}
	if in.LastName != nil {
		if strings.TrimSpace(*in.LastName) == "" {
			return nil, &domain.ValidationError{Fields: []string{"lastName must not be empty"}}
		}
		updates[fieldLastName] = *in.LastName
	}

	var uploadedKey string
	if in.Image != nil {
		url, key, err := s.uploadImage(ctx, p.ProfileID, in.Image)
		if err != nil {
			return nil, err
		}
		updates[fieldImage] = url
		uploadedKey = key
	}
	if len(updates) == 0 {
		return p, nil
	}

	updated, err := s.profiles.Update(ctx, p.ProfileID, updates)
	if err != nil {
		if uploadedKey != "" {
			if delErr := s.images.Delete(ctx, uploadedKey); delErr != nil {
				slog.Warn("orphaned profile image", "key", uploadedKey, "err", delErr)
			}
		}
		return nil, err
	}
	return updated, nil
}

// uploadImage sniffs the content type from the leading bytes rather than
// trusting the client header.
func (s *service) uploadImage(ctx context.Context, profileID string, r io.Reader) (url, key string, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("read image: %w", err)
	}
	if n == 0 {
		return "", "", fmt.Errorf("empty image: %w", domain.ErrBadRequest)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := imageTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("unsupported image type %q: %w", contentType, domain.ErrBadRequest)
	}

	key = fmt.Sprintf("profiles/%s/%s%s", profileID, id.New(), ext)
	url, err = s.images.Upload(ctx, key, io.MultiReader(bytes.NewReader(head), r), contentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}
