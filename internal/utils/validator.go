package utils

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
)

const (
	MaxOriginalURLLength = 200
	MaxAliasLength       = 30
)

func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return apperrors.NewValidationError("original_url", "URL cannot be empty")
	}

	if len(rawURL) > MaxOriginalURLLength {
		return apperrors.NewValidationError("original_url",
			fmt.Sprintf("URL is too long (max %d characters)", MaxOriginalURLLength))
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.NewValidationError("original_url", fmt.Sprintf("invalid URL format: %v", err))
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return apperrors.NewValidationError("original_url", "URL must start with http:// or https://")
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("original_url", "URL must contain a valid host")
	}

	return nil
}

// ValidateAlias проверяет пользовательский alias: 1-30 символов,
// только буквы, цифры, '-' и '_' (должен быть маршрутизируемым сегментом пути).
func ValidateAlias(alias string) error {
	if alias == "" {
		return apperrors.NewValidationError("alias", "alias cannot be empty")
	}

	if len(alias) > MaxAliasLength {
		return apperrors.NewValidationError("alias",
			fmt.Sprintf("alias is too long (max %d characters)", MaxAliasLength))
	}

	for _, r := range alias {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return apperrors.NewValidationError("alias",
				fmt.Sprintf("alias contains invalid character: %c", r))
		}
	}

	return nil
}

func SanitizeInput(input string) string {
	// Удаляем управляющие символы и обрезаем пробелы
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1 // удаляем символ
		}
		return r
	}, input)

	return strings.TrimSpace(result)
}
