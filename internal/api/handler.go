package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"smartbuy-backend/internal/checkout"
	"smartbuy-backend/internal/layout"
	"smartbuy-backend/internal/notification"
	"smartbuy-backend/internal/playback"
	"smartbuy-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	layout   *layout.Layout
	session  *playback.Controller
	checkout *checkout.Service
	pool     *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, l *layout.Layout, session *playback.Controller, co *checkout.Service, pool *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		layout:   l,
		session:  session,
		checkout: co,
		pool:     pool,
		webpush:  webpushOptions,
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, playback.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, playback.ErrUnknownRecommendation),
		errors.Is(err, playback.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, playback.ErrPlaybackActive),
		errors.Is(err, playback.ErrNotAdvancing),
		errors.Is(err, playback.ErrNotPaused),
		errors.Is(err, playback.ErrNoPopup),
		errors.Is(err, playback.ErrAlreadyCollected):
		return http.StatusConflict
	case errors.Is(err, playback.ErrPhotoRequired),
		errors.Is(err, checkout.ErrEmptyBasket):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, playback.ErrCameraUnavailable),
		errors.Is(err, playback.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}
