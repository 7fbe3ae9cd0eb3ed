package favorites

import (
	"context"
	"strings"
	"time"
)

// Favorite is a city saved by a user. Key is the case-folded identity.
type Favorite struct {
	UserID    int64     `json:"-"`
	Key       string    `json:"-"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config holds favorites limits.
type Config struct {
	MaxPerUser int
}

// AddRequest is the POST payload.
type AddRequest struct {
	City string `json:"city"`
}

// Repository persists favorites.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Favorite, error)
	Count(ctx context.Context, userID int64) (int, error)
	// Add inserts fav unless the user already has the key; it returns the stored row.
	Add(ctx context.Context, fav Favorite) (Favorite, bool, error)
	Remove(ctx context.Context, userID int64, key string) (bool, error)
}

// Error codes surfaced by this package.
const (
	CodeFavoritesError = "favorites_error"
	CodeLimitReached   = "limit_reached"
)

// KeyOf normalizes a city name into its favorites identity.
func KeyOf(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
