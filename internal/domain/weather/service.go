package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/yanqian/wearcast/pkg/cache"
	apperrors "github.com/yanqian/wearcast/pkg/errors"
)

// Service returns cached, quota-guarded weather snapshots.
type Service interface {
	Current(ctx context.Context, city string) (Snapshot, error)
	Quota() QuotaStatus
}

// Fetcher talks to the upstream weather provider. ok is false when no snapshot
// could be produced; the fetcher logs the reason itself. The MandatoryCalls are
// reserved by the caller; any further request must be reserved by the fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (snap Snapshot, ok bool)
}

type service struct {
	cfg     Config
	fetcher Fetcher
	quota   *Quota
	loader  *cache.Loader
	logger  *slog.Logger
}

// NewService wires up the weather domain. quota must be the same budget the
// fetcher reserves its optional calls from.
func NewService(cfg Config, fetcher Fetcher, quota *Quota, store cache.Store, logger *slog.Logger) Service {
	logger = logger.With("component", "weather.service")
	return &service{
		cfg:     cfg.withDefaults(),
		fetcher: fetcher,
		quota:   quota,
		loader:  cache.NewLoader(store, logger),
		logger:  logger,
	}
}

func (s *service) Current(ctx context.Context, city string) (Snapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, "city cannot be empty", nil)
	}

	payload, hit, err := s.loader.GetOrLoad(ctx, CacheKey(city), func(ctx context.Context) ([]byte, cache.Policy, error) {
		if !s.quota.TryReserve(MandatoryCalls) {
			s.logger.Warn("daily weather quota exhausted", "city", city)
			return nil, cache.Policy{}, apperrors.Wrap(apperrors.CodeQuotaExceeded, "daily weather quota exceeded", nil)
		}
		snap, ok := s.fetcher.Fetch(ctx, city)
		if !ok {
			return nil, cache.Policy{}, apperrors.Wrap(apperrors.CodeNotFound, "weather unavailable for "+city, nil)
		}
		encoded, err := json.Marshal(snap)
		if err != nil {
			return nil, cache.Policy{}, err
		}
		return encoded, cache.Policy{TTL: s.cfg.CacheTTL}, nil
	})
	if err != nil {
		if apperrors.CodeOf(err) == "" {
			err = apperrors.Wrap(apperrors.CodeUpstream, "weather lookup failed", err)
		}
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeUpstream, "decode cached weather", err)
	}
	s.logger.Debug("weather served", "city", city, "cached", hit)
	return snap, nil
}

func (s *service) Quota() QuotaStatus {
	return s.quota.Status()
}

// CacheKey normalizes a city name into its cache identity.
func CacheKey(city string) string {
	return "weather:" + strings.ToLower(strings.TrimSpace(city))
}
