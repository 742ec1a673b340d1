package repository

import (
	"context"
	"log"

	"github.com/Kosench/go-link-shortener/internal/cache"
	"github.com/Kosench/go-link-shortener/internal/model"
)

// CachedLinkRepository - декоратор над LinkRepository с кэшированием
// горячего пути (поиск по короткому коду). Ошибки кэша не прерывают
// операции: логируем и идем в БД.
type CachedLinkRepository struct {
	inner LinkRepository
	cache cache.Cache
}

func NewCachedLinkRepository(inner LinkRepository, c cache.Cache) LinkRepository {
	return &CachedLinkRepository{
		inner: inner,
		cache: c,
	}
}

// Create создает запись и кладет её в кэш
func (r *CachedLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.inner.Create(ctx, link); err != nil {
		return err
	}

	if err := r.cache.Set(ctx, cache.CacheKeys.Link(link.ShortURL), link); err != nil {
		log.Printf("Failed to cache link: %v", err)
	}

	// Обратный маппинг original URL -> short URL для быстрого поиска дубликатов
	if err := r.cache.SetString(ctx, cache.CacheKeys.Original(link.OriginalURL), link.ShortURL); err != nil {
		log.Printf("Failed to cache reverse mapping: %v", err)
	}

	return nil
}

func (r *CachedLinkRepository) GetByShortURL(ctx context.Context, shortURL string) (*model.Link, error) {
	cacheKey := cache.CacheKeys.Link(shortURL)

	var cached model.Link
	err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if err != cache.ErrCacheMiss {
		log.Printf("Cache error: %v", err)
	}

	link, err := r.inner.GetByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, cacheKey, link); err != nil {
		log.Printf("Failed to cache link: %v", err)
	}

	return link, nil
}

func (r *CachedLinkRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error) {
	// Сначала обратный маппинг
	shortURL, err := r.cache.GetString(ctx, cache.CacheKeys.Original(originalURL))
	if err == nil && shortURL != "" {
		return r.GetByShortURL(ctx, shortURL)
	}

	link, err := r.inner.GetByOriginalURL(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetString(ctx, cache.CacheKeys.Original(originalURL), link.ShortURL); err != nil {
		log.Printf("Failed to cache reverse mapping: %v", err)
	}
	if err := r.cache.Set(ctx, cache.CacheKeys.Link(link.ShortURL), link); err != nil {
		log.Printf("Failed to cache link: %v", err)
	}

	return link, nil
}

func (r *CachedLinkRepository) ExistsByShortURL(ctx context.Context, shortURL string) (bool, error) {
	exists, err := r.cache.Exists(ctx, cache.CacheKeys.Link(shortURL))
	if err == nil && exists {
		return true, nil
	}

	return r.inner.ExistsByShortURL(ctx, shortURL)
}

func (r *CachedLinkRepository) ExistsByOriginalURL(ctx context.Context, originalURL string) (bool, error) {
	_, err := r.cache.GetString(ctx, cache.CacheKeys.Original(originalURL))
	if err == nil {
		return true, nil
	}

	return r.inner.ExistsByOriginalURL(ctx, originalURL)
}

// List всегда идет в БД: фильтры не кэшируются
func (r *CachedLinkRepository) List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
	return r.inner.List(ctx, filter)
}

func (r *CachedLinkRepository) UpdateOriginalURL(ctx context.Context, shortURL, originalURL string) error {
	// Старый обратный маппинг инвалидировать не по чему - original URL
	// меняется; забираем запись до обновления, чтобы снять оба ключа.
	var staleOriginal string
	if link, err := r.inner.GetByShortURL(ctx, shortURL); err == nil {
		staleOriginal = link.OriginalURL
	}

	if err := r.inner.UpdateOriginalURL(ctx, shortURL, originalURL); err != nil {
		return err
	}

	keys := []string{cache.CacheKeys.Link(shortURL)}
	if staleOriginal != "" {
		keys = append(keys, cache.CacheKeys.Original(staleOriginal))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Printf("Failed to invalidate link cache: %v", err)
	}

	return nil
}

func (r *CachedLinkRepository) IncrementClicks(ctx context.Context, shortURL string) (int64, error) {
	clicks, err := r.inner.IncrementClicks(ctx, shortURL)
	if err != nil {
		return 0, err
	}

	// Инвалидируем кэш чтобы при следующем чтении обновился счетчик
	if err := r.cache.Delete(ctx, cache.CacheKeys.Link(shortURL)); err != nil {
		log.Printf("Failed to invalidate link cache: %v", err)
	}

	return clicks, nil
}

func (r *CachedLinkRepository) Delete(ctx context.Context, shortURL string) error {
	var staleOriginal string
	if link, err := r.inner.GetByShortURL(ctx, shortURL); err == nil {
		staleOriginal = link.OriginalURL
	}

	if err := r.inner.Delete(ctx, shortURL); err != nil {
		return err
	}

	keys := []string{cache.CacheKeys.Link(shortURL)}
	if staleOriginal != "" {
		keys = append(keys, cache.CacheKeys.Original(staleOriginal))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		log.Printf("Failed to invalidate link cache: %v", err)
	}

	return nil
}
