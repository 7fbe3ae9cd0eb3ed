package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wearcast/internal/domain/advice"
	"github.com/yanqian/wearcast/internal/domain/auth"
	"github.com/yanqian/wearcast/internal/domain/favorites"
	"github.com/yanqian/wearcast/internal/domain/weather"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	weatherSvc   weather.Service
	adviceSvc    advice.Service
	authSvc      auth.Service
	favoritesSvc favorites.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(weatherSvc weather.Service, adviceSvc advice.Service, authSvc auth.Service, favoritesSvc favorites.Service, logger *slog.Logger) *Handler {
	return &Handler{
		weatherSvc:   weatherSvc,
		adviceSvc:    adviceSvc,
		authSvc:      authSvc,
		favoritesSvc: favoritesSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

type adviceResponse struct {
	Weather      weather.Snapshot `json:"weather"`
	Advice       advice.Advice    `json:"advice"`
	Provider     string           `json:"provider"`
	Cached       bool             `json:"cached"`
	PromptTokens int              `json:"promptTokens"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Weather returns the current snapshot for a city.
func (h *Handler) Weather(c *gin.Context) {
	snap, err := h.weatherSvc.Current(c.Request.Context(), c.Param("city"))
	if err != nil {
		abortWithError(c, fromAppError(err, "weather_failed"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Advice returns the weather snapshot together with outfit advice for it.
// Advice itself never fails; only the weather lookup can.
func (h *Handler) Advice(c *gin.Context) {
	ctx := c.Request.Context()
	snap, err := h.weatherSvc.Current(ctx, c.Param("city"))
	if err != nil {
		abortWithError(c, fromAppError(err, "weather_failed"))
		return
	}

	result := h.adviceSvc.Advise(ctx, snap)
	h.logger.Debug("advice served", "city", snap.City, "provider", result.Provider, "cached", result.Cached)
	c.JSON(http.StatusOK, adviceResponse{
		Weather:      snap,
		Advice:       result.Advice,
		Provider:     result.Provider,
		Cached:       result.Cached,
		PromptTokens: result.Usage.PromptTokens,
	})
}

// Quota reports today's upstream weather budget.
func (h *Handler) Quota(c *gin.Context) {
	c.JSON(http.StatusOK, h.weatherSvc.Quota())
}
