package model

import "time"

// Link - короткая ссылка и её метаданные
type Link struct {
	ID           int64      `json:"id"`
	OriginalURL  string     `json:"original_url"`
	ShortURL     string     `json:"short_url"`
	Clicks       int64      `json:"clicks"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsRegistered bool       `json:"is_registered"`
	OwnerID      *int64     `json:"owner_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Expired сообщает, истекла ли ссылка к моменту now.
// Время жизни всегда сравнивается в UTC.
func (l *Link) Expired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return !l.ExpiresAt.UTC().After(now.UTC())
}

type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url" binding:"required"`
	Alias       string     `json:"alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type UpdateLinkRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
}

// LinkFilter - опциональные критерии для выборки ссылок.
// Пустое поле не накладывает ограничений.
type LinkFilter struct {
	OriginalURL string
	ShortURL    string
	OwnerID     *int64
}

type LinkStats struct {
	OriginalURL string     `json:"original_url"`
	ShortURL    string     `json:"short_url"`
	Clicks      int64      `json:"clicks"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type LinkResponse struct {
	Message   string `json:"message"`
	Link      *Link  `json:"link"`
	ShortLink string `json:"short_link"`
}
