package favorites_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/internal/domain/favorites"
	"github.com/yanqian/wearcast/internal/infra/favoriterepo"
	apperrors "github.com/yanqian/wearcast/pkg/errors"
	"github.com/yanqian/wearcast/pkg/logger"
)

func newService(max int) favorites.Service {
	return favorites.NewService(favorites.Config{MaxPerUser: max}, favoriterepo.NewMemoryRepository(), logger.Discard())
}

func TestAddIsIdempotentPerCity(t *testing.T) {
	svc := newService(0)
	ctx := context.Background()

	first, err := svc.Add(ctx, 1, "  New   York ")
	require.NoError(t, err)
	require.Equal(t, "New York", first.City)

	again, err := svc.Add(ctx, 1, "new york")
	require.NoError(t, err)
	require.Equal(t, "New York", again.City)

	_, err = svc.Add(ctx, 2, "New York")
	require.NoError(t, err)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddEnforcesLimit(t *testing.T) {
	svc := newService(3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Add(ctx, 7, fmt.Sprintf("City%d", i))
		require.NoError(t, err)
	}

	_, err := svc.Add(ctx, 7, "Overflow")
	require.True(t, apperrors.IsCode(err, favorites.CodeLimitReached))

	_, err = svc.Add(ctx, 7, "city1")
	require.NoError(t, err)
}

func TestRemoveAndValidation(t *testing.T) {
	svc := newService(0)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Add(ctx, 1, "Lisbon")
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, 1, "LISBON"))

	err = svc.Remove(ctx, 1, "Lisbon")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}
