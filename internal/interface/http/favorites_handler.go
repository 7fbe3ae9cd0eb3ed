package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/wearcast/internal/domain/favorites"
)

// ListFavorites returns the caller's saved cities.
func (h *Handler) ListFavorites(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}
	items, err := h.favoritesSvc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromAppError(err, favorites.CodeFavoritesError))
		return
	}
	if items == nil {
		items = []favorites.Favorite{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": items})
}

// AddFavorite saves a city for the caller. Re-adding a saved city is a no-op.
func (h *Handler) AddFavorite(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}
	var req favorites.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	fav, err := h.favoritesSvc.Add(c.Request.Context(), claims.UserID, req.City)
	if err != nil {
		abortWithError(c, fromAppError(err, favorites.CodeFavoritesError))
		return
	}
	c.JSON(http.StatusOK, fav)
}

// RemoveFavorite deletes a saved city.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing credentials", nil))
		return
	}
	if err := h.favoritesSvc.Remove(c.Request.Context(), claims.UserID, c.Param("city")); err != nil {
		abortWithError(c, fromAppError(err, favorites.CodeFavoritesError))
		return
	}
	c.Status(http.StatusNoContent)
}
