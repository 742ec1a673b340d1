package handler

import (
	"context"

	"github.com/Kosench/go-link-shortener/internal/auth"
	"github.com/Kosench/go-link-shortener/internal/model"
)

// LinkService - операции сервиса ссылок, нужные HTTP-слою.
type LinkService interface {
	List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error)
	Create(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error)
	FindByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error)
	Redirect(ctx context.Context, shortURL string) (string, error)
	Delete(ctx context.Context, shortURL string, requester *auth.Requester) error
	UpdateOriginalURL(ctx context.Context, shortURL, newURL string, requester *auth.Requester) (*model.Link, error)
	Stats(ctx context.Context, shortURL string) (*model.LinkStats, error)
	BuildShortLink(shortURL string) string
}

// UserService - операции сервиса пользователей, нужные HTTP-слою.
type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (string, *model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	RequesterFromToken(ctx context.Context, token string) (*auth.Requester, error)
	TokenTTL() int
}
