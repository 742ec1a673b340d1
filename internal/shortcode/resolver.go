package shortcode

import (
	"context"
	"fmt"

	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
)

const DefaultMaxAttempts = 2000

// Checker - минимальная возможность хранилища, нужная резолверу.
type Checker interface {
	ExistsByShortURL(ctx context.Context, shortURL string) (bool, error)
}

// Resolver подбирает свободный короткий код.
//
// Проверка "свободен ли код" не атомарна с последующей вставкой записи -
// узкое окно гонки между конкурентными запросами остается. Проверка здесь
// только быстрый путь; окончательную уникальность обеспечивает уникальный
// индекс на short_url, и нарушение на вставке обрабатывает вызывающий код.
type Resolver struct {
	gen         *Generator
	repo        Checker
	maxAttempts int
}

func NewResolver(gen *Generator, repo Checker, maxAttempts int) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Resolver{
		gen:         gen,
		repo:        repo,
		maxAttempts: maxAttempts,
	}
}

// Resolve возвращает свободный короткий код для originalURL.
// Непустой alias - фиксированный запрос: одна проверка, без перегенерации.
func (r *Resolver) Resolve(ctx context.Context, originalURL, alias string) (string, error) {
	if alias != "" {
		return r.resolveAlias(ctx, alias)
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		code := r.gen.Code(originalURL)

		exists, err := r.repo.ExistsByShortURL(ctx, code)
		if err != nil {
			// Недоступность хранилища - не исчерпание пространства кодов
			return "", fmt.Errorf("failed to check short URL: %w", err)
		}

		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("no free code after %d attempts: %w", r.maxAttempts, apperrors.ErrCodeSpaceExhausted)
}

func (r *Resolver) resolveAlias(ctx context.Context, alias string) (string, error) {
	exists, err := r.repo.ExistsByShortURL(ctx, alias)
	if err != nil {
		return "", fmt.Errorf("failed to check alias: %w", err)
	}
	if exists {
		return "", fmt.Errorf("alias '%s': %w", alias, apperrors.ErrAliasTaken)
	}
	return alias, nil
}
