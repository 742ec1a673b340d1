package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kosench/go-link-shortener/internal/auth"
	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
	"github.com/Kosench/go-link-shortener/internal/model"
)

// mockLinkService - управляемая реализация LinkService для HTTP-тестов
type mockLinkService struct {
	listFn     func(ctx context.Context, filter model.LinkFilter) ([]model.Link, error)
	createFn   func(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error)
	findFn     func(ctx context.Context, originalURL string) (*model.Link, error)
	redirectFn func(ctx context.Context, shortURL string) (string, error)
	deleteFn   func(ctx context.Context, shortURL string, requester *auth.Requester) error
	updateFn   func(ctx context.Context, shortURL, newURL string, requester *auth.Requester) (*model.Link, error)
	statsFn    func(ctx context.Context, shortURL string) (*model.LinkStats, error)
}

func (m *mockLinkService) List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
	return m.listFn(ctx, filter)
}

func (m *mockLinkService) Create(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error) {
	return m.createFn(ctx, req, requester)
}

func (m *mockLinkService) FindByOriginalURL(ctx context.Context, originalURL string) (*model.Link, error) {
	return m.findFn(ctx, originalURL)
}

func (m *mockLinkService) Redirect(ctx context.Context, shortURL string) (string, error) {
	return m.redirectFn(ctx, shortURL)
}

func (m *mockLinkService) Delete(ctx context.Context, shortURL string, requester *auth.Requester) error {
	return m.deleteFn(ctx, shortURL, requester)
}

func (m *mockLinkService) UpdateOriginalURL(ctx context.Context, shortURL, newURL string, requester *auth.Requester) (*model.Link, error) {
	return m.updateFn(ctx, shortURL, newURL, requester)
}

func (m *mockLinkService) Stats(ctx context.Context, shortURL string) (*model.LinkStats, error) {
	return m.statsFn(ctx, shortURL)
}

func (m *mockLinkService) BuildShortLink(shortURL string) string {
	return "http://localhost:8080/links/" + shortURL
}

func setupLinkRouter(svc LinkService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewLinkHandler(svc)
	router.GET("/links", h.ListLinks)
	router.POST("/links/shorten", h.CreateLink)
	router.GET("/links/search", h.SearchLink)
	router.GET("/links/:shortCode", h.RedirectLink)
	router.DELETE("/links/:shortCode", h.DeleteLink)
	router.PUT("/links/:shortCode", h.UpdateLink)
	router.GET("/links/:shortCode/stats", h.GetStats)
	return router
}

func TestLinkHandler_CreateLink(t *testing.T) {
	svc := &mockLinkService{
		createFn: func(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error) {
			return &model.Link{
				ID:          1,
				OriginalURL: req.OriginalURL,
				ShortURL:    "abc12345",
			}, nil
		},
	}
	router := setupLinkRouter(svc)

	body := bytes.NewBufferString(`{"original_url": "https://example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/links/shorten", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp model.LinkResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Link == nil || resp.Link.ShortURL != "abc12345" {
		t.Errorf("response link = %+v, want short URL abc12345", resp.Link)
	}
	if resp.ShortLink != "http://localhost:8080/links/abc12345" {
		t.Errorf("short_link = %q, want full link", resp.ShortLink)
	}
}

func TestLinkHandler_CreateLink_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid JSON",
			body:       `{invalid`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
		{
			name:       "missing original_url",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
		{
			name:       "validation error",
			body:       `{"original_url": "not-a-url"}`,
			serviceErr: apperrors.NewValidationError("original_url", "invalid URL format"),
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "duplicate original URL",
			body:       `{"original_url": "https://example.com"}`,
			serviceErr: fmt.Errorf("wrapped: %w", apperrors.ErrDuplicateOriginalURL),
			wantStatus: http.StatusConflict,
			wantError:  "duplicate_original_url",
		},
		{
			name:       "alias taken",
			body:       `{"original_url": "https://example.com", "alias": "taken"}`,
			serviceErr: fmt.Errorf("wrapped: %w", apperrors.ErrAliasTaken),
			wantStatus: http.StatusConflict,
			wantError:  "alias_taken",
		},
		{
			name:       "code space exhausted",
			body:       `{"original_url": "https://example.com"}`,
			serviceErr: fmt.Errorf("wrapped: %w", apperrors.ErrCodeSpaceExhausted),
			wantStatus: http.StatusInternalServerError,
			wantError:  "code_space_exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLinkService{
				createFn: func(ctx context.Context, req *model.CreateLinkRequest, requester *auth.Requester) (*model.Link, error) {
					return nil, tt.serviceErr
				},
			}
			router := setupLinkRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/links/shorten", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body: %s", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", resp["error"], tt.wantError)
			}
		})
	}
}

func TestLinkHandler_RedirectLink(t *testing.T) {
	svc := &mockLinkService{
		redirectFn: func(ctx context.Context, shortURL string) (string, error) {
			if shortURL == "abc12345" {
				return "https://example.com/target", nil
			}
			return "", apperrors.ErrLinkNotFound
		},
	}
	router := setupLinkRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/links/abc12345", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if location := w.Header().Get("Location"); location != "https://example.com/target" {
		t.Errorf("Location = %q, want %q", location, "https://example.com/target")
	}

	req = httptest.NewRequest(http.MethodGet, "/links/missing1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status for missing link = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestLinkHandler_ListLinks(t *testing.T) {
	var gotFilter model.LinkFilter
	svc := &mockLinkService{
		listFn: func(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	router := setupLinkRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/links?shortURL=abc12345&ownerId=7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotFilter.ShortURL != "abc12345" {
		t.Errorf("filter.ShortURL = %q, want abc12345", gotFilter.ShortURL)
	}
	if gotFilter.OwnerID == nil || *gotFilter.OwnerID != 7 {
		t.Errorf("filter.OwnerID = %v, want 7", gotFilter.OwnerID)
	}
	// nil от сервиса сериализуется как пустой массив
	if body := w.Body.String(); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestLinkHandler_ListLinks_BadOwnerID(t *testing.T) {
	router := setupLinkRouter(&mockLinkService{})

	req := httptest.NewRequest(http.MethodGet, "/links?ownerId=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLinkHandler_SearchLink(t *testing.T) {
	svc := &mockLinkService{
		findFn: func(ctx context.Context, originalURL string) (*model.Link, error) {
			if originalURL == "https://example.com" {
				return &model.Link{ID: 1, OriginalURL: originalURL, ShortURL: "abc12345"}, nil
			}
			return nil, apperrors.ErrLinkNotFound
		},
	}
	router := setupLinkRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/links/search?url=https%3A%2F%2Fexample.com", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var link model.Link
	if err := json.Unmarshal(w.Body.Bytes(), &link); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if link.ShortURL != "abc12345" {
		t.Errorf("short URL = %q, want abc12345", link.ShortURL)
	}

	// Без параметра url - ошибка запроса
	req = httptest.NewRequest(http.MethodGet, "/links/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status without url param = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLinkHandler_DeleteLink(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "deleted",
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			serviceErr: apperrors.ErrLinkNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "owner only",
			serviceErr: fmt.Errorf("link 'abc12345': %w", apperrors.ErrOwnerOnly),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLinkService{
				deleteFn: func(ctx context.Context, shortURL string, requester *auth.Requester) error {
					return tt.serviceErr
				},
			}
			router := setupLinkRouter(svc)

			req := httptest.NewRequest(http.MethodDelete, "/links/abc12345", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestLinkHandler_UpdateLink(t *testing.T) {
	svc := &mockLinkService{
		updateFn: func(ctx context.Context, shortURL, newURL string, requester *auth.Requester) (*model.Link, error) {
			return &model.Link{ID: 1, OriginalURL: newURL, ShortURL: shortURL}, nil
		},
	}
	router := setupLinkRouter(svc)

	body := bytes.NewBufferString(`{"original_url": "https://new.example.com"}`)
	req := httptest.NewRequest(http.MethodPut, "/links/abc12345", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Link model.Link `json:"link"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Link.OriginalURL != "https://new.example.com" {
		t.Errorf("updated URL = %q, want https://new.example.com", resp.Link.OriginalURL)
	}
}

func TestLinkHandler_GetStats(t *testing.T) {
	svc := &mockLinkService{
		statsFn: func(ctx context.Context, shortURL string) (*model.LinkStats, error) {
			return &model.LinkStats{
				OriginalURL: "https://example.com",
				ShortURL:    shortURL,
				Clicks:      42,
			}, nil
		},
	}
	router := setupLinkRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/links/abc12345/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var stats model.LinkStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if stats.Clicks != 42 {
		t.Errorf("clicks = %d, want 42", stats.Clicks)
	}
}
