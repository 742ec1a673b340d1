package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
	"github.com/Kosench/go-link-shortener/internal/model"
)

type LinkHandler struct {
	links LinkService
}

func NewLinkHandler(links LinkService) *LinkHandler {
	return &LinkHandler{
		links: links,
	}
}

// ListLinks возвращает ссылки по опциональным фильтрам из query.
func (h *LinkHandler) ListLinks(c *gin.Context) {
	filter := model.LinkFilter{
		OriginalURL: c.Query("originalURL"),
		ShortURL:    c.Query("shortURL"),
	}

	if raw := c.Query("ownerId"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "ownerId must be an integer",
			})
			return
		}
		filter.OwnerID = &ownerID
	}

	links, err := h.links.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if links == nil {
		links = []model.Link{}
	}
	c.JSON(http.StatusOK, links)
}

func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req model.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format",
		})
		return
	}

	link, err := h.links.Create(c.Request.Context(), &req, RequesterFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.LinkResponse{
		Message:   "Link created successfully",
		Link:      link,
		ShortLink: h.links.BuildShortLink(link.ShortURL),
	})
}

// SearchLink ищет ссылку по оригинальному URL: GET /links/search?url=
func (h *LinkHandler) SearchLink(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Query parameter 'url' is required",
		})
		return
	}

	link, err := h.links.FindByOriginalURL(c.Request.Context(), rawURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, link)
}

// RedirectLink выполняет переход по короткой ссылке (HTTP 302).
// Клик фиксируется до ответа.
func (h *LinkHandler) RedirectLink(c *gin.Context) {
	shortCode := c.Param("shortCode")
	if shortCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Short code is required",
		})
		return
	}

	originalURL, err := h.links.Redirect(c.Request.Context(), shortCode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

func (h *LinkHandler) DeleteLink(c *gin.Context) {
	shortCode := c.Param("shortCode")

	if err := h.links.Delete(c.Request.Context(), shortCode, RequesterFrom(c)); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Link deleted successfully",
	})
}

func (h *LinkHandler) UpdateLink(c *gin.Context) {
	shortCode := c.Param("shortCode")

	var req model.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format",
		})
		return
	}

	link, err := h.links.UpdateOriginalURL(c.Request.Context(), shortCode, req.OriginalURL, RequesterFrom(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Link updated successfully",
		"link":    link,
	})
}

func (h *LinkHandler) GetStats(c *gin.Context) {
	shortCode := c.Param("shortCode")

	stats, err := h.links.Stats(c.Request.Context(), shortCode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleError обрабатывает ошибки и возвращает соответствующие HTTP коды
func (h *LinkHandler) handleError(c *gin.Context, err error) {
	if apperrors.IsValidationError(err) {
		validationErr := apperrors.GetValidationError(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "link_not_found",
			"message": "Link not found",
		})
		return
	case errors.Is(err, apperrors.ErrDuplicateOriginalURL):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "duplicate_original_url",
			"message": "A short link for this URL already exists",
		})
		return
	case errors.Is(err, apperrors.ErrAliasTaken):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "alias_taken",
			"message": "This alias is already in use",
		})
		return
	case errors.Is(err, apperrors.ErrOwnerOnly):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "owner_only",
			"message": "Only the link owner may modify it",
		})
		return
	case errors.Is(err, apperrors.ErrCodeSpaceExhausted):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "code_space_exhausted",
			"message": "Failed to generate a unique short code",
		})
		return
	}

	if apperrors.IsBusinessError(err) {
		businessErr := apperrors.GetBusinessError(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "business_error",
			"message": businessErr.Message,
			"code":    businessErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An unexpected error occurred",
	})
}
