package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Kosench/go-link-shortener/internal/auth"
	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
	"github.com/Kosench/go-link-shortener/internal/model"
	"github.com/Kosench/go-link-shortener/internal/repository"
	"github.com/Kosench/go-link-shortener/internal/shortcode"
	"github.com/Kosench/go-link-shortener/internal/utils"
)

type LinkService struct {
	links    repository.LinkRepository
	resolver *shortcode.Resolver
	baseURL  string

	// insertRetries - бюджет повторов вставки на случай, когда проверенный
	// резолвером код успел занять конкурентный запрос. Уникальный индекс
	// на short_url превращает такую гонку в ErrShortURLTaken.
	insertRetries int
}

func NewLinkService(links repository.LinkRepository, resolver *shortcode.Resolver, baseURL string) *LinkService {
	return &LinkService{
		links:         links,
		resolver:      resolver,
		baseURL:       baseURL,
		insertRetries: 5,
	}
}

// Create регистрирует новую короткую ссылку.
// requester == nil означает анонимного создателя.
func (s *LinkService) Create(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error) {
	originalURL := utils.SanitizeInput(req.OriginalURL)
	if err := utils.ValidateURL(originalURL); err != nil {
		return nil, err
	}

	alias := utils.SanitizeInput(req.Alias)
	if alias != "" {
		if err := utils.ValidateAlias(alias); err != nil {
			return nil, err
		}
	}

	exists, err := s.links.ExistsByOriginalURL(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check original URL: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("'%s': %w", originalURL, apperrors.ErrDuplicateOriginalURL)
	}

	isRegistered := requester != nil
	var ownerID *int64
	if requester != nil {
		id := requester.UserID
		ownerID = &id
	}

	for attempt := 0; attempt < s.insertRetries; attempt++ {
		shortURL, err := s.resolver.Resolve(ctx, originalURL, alias)
		if err != nil {
			return nil, err
		}

		link := &model.Link{
			OriginalURL:  originalURL,
			ShortURL:     shortURL,
			Clicks:       0,
			ExpiresAt:    normalizeExpiry(req.ExpiresAt),
			IsRegistered: isRegistered,
			OwnerID:      ownerID,
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}

		if errors.Is(err, apperrors.ErrShortURLTaken) {
			if alias != "" {
				// Для alias гонка на вставке равносильна занятому alias
				return nil, fmt.Errorf("alias '%s': %w", alias, apperrors.ErrAliasTaken)
			}
			continue // код заняли между проверкой и вставкой
		}

		return nil, err
	}

	return nil, fmt.Errorf("insert retries exhausted: %w", apperrors.ErrCodeSpaceExhausted)
}

func (s *LinkService) List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
	return s.links.List(ctx, filter)
}

func (s *LinkService) FindByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error) {
	originalURL = utils.SanitizeInput(originalURL)
	if originalURL == "" {
		return nil, apperrors.NewValidationError("url", "URL cannot be empty")
	}
	return s.links.GetByOriginalURL(ctx, originalURL)
}

// Redirect возвращает оригинальный URL и фиксирует переход.
// Инкремент кликов выполняется до ответа; если ссылку успел удалить
// фоновый sweeper, потерю инкремента просто логируем - редирект
// все равно отдается.
func (s *LinkService) Redirect(ctx context.Context, shortURL string) (string, error) {
	link, err := s.links.GetByShortURL(ctx, shortURL)
	if err != nil {
		return "", err
	}

	if _, err := s.links.IncrementClicks(ctx, shortURL); err != nil {
		if errors.Is(err, apperrors.ErrLinkNotFound) {
			log.Printf("Link %s deleted concurrently, click not recorded", shortURL)
		} else {
			log.Printf("Failed to record click for %s: %v", shortURL, err)
		}
	}

	return link.OriginalURL, nil
}

func (s *LinkService) Delete(ctx context.Context, shortURL string, requester *auth.Requester) error {
	link, err := s.links.GetByShortURL(ctx, shortURL)
	if err != nil {
		return err
	}

	if !auth.CanMutate(link, requester) {
		return fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrOwnerOnly)
	}

	return s.links.Delete(ctx, shortURL)
}

func (s *LinkService) UpdateOriginalURL(ctx context.Context, shortURL, newURL string, requester *auth.Requester) (*model.Link, error) {
	newURL = utils.SanitizeInput(newURL)
	if err := utils.ValidateURL(newURL); err != nil {
		return nil, err
	}

	link, err := s.links.GetByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	if !auth.CanMutate(link, requester) {
		return nil, fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrOwnerOnly)
	}

	if err := s.links.UpdateOriginalURL(ctx, shortURL, newURL); err != nil {
		return nil, err
	}

	return s.links.GetByShortURL(ctx, shortURL)
}

func (s *LinkService) Stats(ctx context.Context, shortURL string) (*model.LinkStats, error) {
	link, err := s.links.GetByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	return &model.LinkStats{
		OriginalURL: link.OriginalURL,
		ShortURL:    link.ShortURL,
		Clicks:      link.Clicks,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}, nil
}

// BuildShortLink собирает полную короткую ссылку для ответа клиенту.
func (s *LinkService) BuildShortLink(shortURL string) string {
	return fmt.Sprintf("%s/links/%s", s.baseURL, shortURL)
}

// normalizeExpiry приводит время жизни к UTC; naive-времена считаются UTC.
func normalizeExpiry(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
