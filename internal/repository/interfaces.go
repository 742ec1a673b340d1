package repository

import (
	"context"

	"github.com/Kosench/go-link-shortener/internal/model"
)

type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByShortURL(ctx context.Context, shortURL string) (*model.Link, error)
	GetByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error)
	ExistsByShortURL(ctx context.Context, shortURL string) (bool, error)
	ExistsByOriginalURL(ctx context.Context, originalURL string) (bool, error)
	List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error)
	UpdateOriginalURL(ctx context.Context, shortURL, originalURL string) error
	IncrementClicks(ctx context.Context, shortURL string) (int64, error)
	Delete(ctx context.Context, shortURL string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}
