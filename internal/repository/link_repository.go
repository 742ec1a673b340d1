package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
	"github.com/Kosench/go-link-shortener/internal/model"
)

const uniqueViolationCode = "23505"

type PostgresLinkRepository struct {
	db *sql.DB
}

func NewPostgresLinkRepository(db *sql.DB) LinkRepository {
	return &PostgresLinkRepository{
		db: db,
	}
}

// translateUniqueViolation переводит нарушение уникального индекса
// в ошибку предметной области по имени constraint. nil если ошибка не про это.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return nil
	}

	switch pgErr.ConstraintName {
	case "links_original_url_key":
		return apperrors.ErrDuplicateOriginalURL
	case "links_short_url_key":
		return apperrors.ErrShortURLTaken
	}
	return apperrors.ErrShortURLTaken
}

func (r *PostgresLinkRepository) Create(ctx context.Context, link *model.Link) error {
	query := `
	INSERT INTO links (original_url, short_url, clicks, expires_at, is_registered, owner_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		link.OriginalURL,
		link.ShortURL,
		link.Clicks,
		link.ExpiresAt,
		link.IsRegistered,
		link.OwnerID,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		if mapped := translateUniqueViolation(err); mapped != nil {
			return mapped
		}
		return apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to create link",
			err,
		)
	}

	return nil
}

const linkColumns = `id, original_url, short_url, clicks, expires_at, is_registered, owner_id, created_at, updated_at`

func scanLink(row interface{ Scan(...interface{}) error }) (*model.Link, error) {
	link := &model.Link{}
	err := row.Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortURL,
		&link.Clicks,
		&link.ExpiresAt,
		&link.IsRegistered,
		&link.OwnerID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *PostgresLinkRepository) GetByShortURL(ctx context.Context, shortURL string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_url = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, shortURL))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrLinkNotFound)
	}
	if err != nil {
		return nil, apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to get link",
			err,
		)
	}

	return link, nil
}

func (r *PostgresLinkRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE original_url = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, originalURL))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("original URL '%s': %w", originalURL, apperrors.ErrLinkNotFound)
	}
	if err != nil {
		return nil, apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to get link by original URL",
			err,
		)
	}

	return link, nil
}

func (r *PostgresLinkRepository) ExistsByShortURL(ctx context.Context, shortURL string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_url = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, shortURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check short URL existence: %w", err)
	}

	return exists, nil
}

func (r *PostgresLinkRepository) ExistsByOriginalURL(ctx context.Context, originalURL string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE original_url = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, originalURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check original URL existence: %w", err)
	}

	return exists, nil
}

// List возвращает ссылки по опциональным критериям фильтра.
// Каждое заполненное поле добавляет условие через AND, пустые не участвуют.
func (r *PostgresLinkRepository) List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links`

	var conditions []string
	var args []interface{}

	if filter.OriginalURL != "" {
		args = append(args, filter.OriginalURL)
		conditions = append(conditions, "original_url = $"+strconv.Itoa(len(args)))
	}
	if filter.ShortURL != "" {
		args = append(args, filter.ShortURL)
		conditions = append(conditions, "short_url = $"+strconv.Itoa(len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, "owner_id = $"+strconv.Itoa(len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to list links",
			err,
		)
	}
	defer rows.Close()

	var links []model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, apperrors.NewBusinessError(
				"DATABASE_ERROR",
				"failed to scan link",
				err,
			)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to iterate links",
			err,
		)
	}

	return links, nil
}

func (r *PostgresLinkRepository) UpdateOriginalURL(ctx context.Context, shortURL, originalURL string) error {
	query := `
	UPDATE links
	SET original_url = $2, updated_at = now()
	WHERE short_url = $1
	`

	result, err := r.db.ExecContext(ctx, query, shortURL, originalURL)
	if err != nil {
		if mapped := translateUniqueViolation(err); mapped != nil {
			return mapped
		}
		return apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to update link",
			err,
		)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrLinkNotFound)
	}

	return nil
}

// IncrementClicks атомарно увеличивает счетчик на уровне строки.
func (r *PostgresLinkRepository) IncrementClicks(ctx context.Context, shortURL string) (int64, error) {
	query := `
	UPDATE links
	SET clicks = clicks + 1, updated_at = now()
	WHERE short_url = $1
	RETURNING clicks
	`

	var clicks int64
	err := r.db.QueryRowContext(ctx, query, shortURL).Scan(&clicks)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrLinkNotFound)
	}
	if err != nil {
		return 0, apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to increment clicks",
			err,
		)
	}

	return clicks, nil
}

func (r *PostgresLinkRepository) Delete(ctx context.Context, shortURL string) error {
	query := `DELETE FROM links WHERE short_url = $1`

	result, err := r.db.ExecContext(ctx, query, shortURL)
	if err != nil {
		return apperrors.NewBusinessError(
			"DATABASE_ERROR",
			"failed to delete link",
			err,
		)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("link '%s': %w", shortURL, apperrors.ErrLinkNotFound)
	}

	return nil
}
