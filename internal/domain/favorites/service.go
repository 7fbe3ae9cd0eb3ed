package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

const (
	defaultMaxPerUser = 20
	maxCityLength     = 100
)

// Service manages a user's saved cities.
type Service interface {
	List(ctx context.Context, userID int64) ([]Favorite, error)
	Add(ctx context.Context, userID int64, city string) (Favorite, error)
	Remove(ctx context.Context, userID int64, city string) error
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the favorites domain.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	if cfg.MaxPerUser <= 0 {
		cfg.MaxPerUser = defaultMaxPerUser
	}
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "favorites.service"),
		now:    time.Now,
	}
}

func (s *service) List(ctx context.Context, userID int64) ([]Favorite, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(CodeFavoritesError, "failed to list favorites", err)
	}
	if items == nil {
		items = []Favorite{}
	}
	return items, nil
}

func (s *service) Add(ctx context.Context, userID int64, city string) (Favorite, error) {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return Favorite{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city cannot be empty", nil)
	}
	if len([]rune(city)) > maxCityLength {
		return Favorite{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city name too long", nil)
	}

	count, err := s.repo.Count(ctx, userID)
	if err != nil {
		return Favorite{}, apperrors.Wrap(CodeFavoritesError, "failed to count favorites", err)
	}
	fav := Favorite{UserID: userID, Key: KeyOf(city), City: city, CreatedAt: s.now().UTC()}
	if count >= s.cfg.MaxPerUser {
		// re-adding an existing city stays idempotent at the limit
		existing, err := s.repo.List(ctx, userID)
		if err != nil {
			return Favorite{}, apperrors.Wrap(CodeFavoritesError, "failed to list favorites", err)
		}
		for _, item := range existing {
			if item.Key == fav.Key {
				return item, nil
			}
		}
		return Favorite{}, apperrors.Wrap(CodeLimitReached, fmt.Sprintf("at most %d favorites allowed", s.cfg.MaxPerUser), nil)
	}

	stored, created, err := s.repo.Add(ctx, fav)
	if err != nil {
		return Favorite{}, apperrors.Wrap(CodeFavoritesError, "failed to save favorite", err)
	}
	if created {
		s.logger.Info("favorite added", "userId", userID, "city", stored.City)
	}
	return stored, nil
}

func (s *service) Remove(ctx context.Context, userID int64, city string) error {
	key := KeyOf(city)
	if key == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "city cannot be empty", nil)
	}
	removed, err := s.repo.Remove(ctx, userID, key)
	if err != nil {
		return apperrors.Wrap(CodeFavoritesError, "failed to remove favorite", err)
	}
	if !removed {
		return apperrors.Wrap(apperrors.CodeNotFound, "favorite not found", nil)
	}
	return nil
}
