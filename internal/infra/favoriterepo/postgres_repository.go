package favoriterepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/wearcast/internal/domain/favorites"
)

// PostgresRepository persists favorites in the favorites table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]favorites.Favorite, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, city_key, city, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at, city_key
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []favorites.Favorite
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fav)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Add(ctx context.Context, fav favorites.Favorite) (favorites.Favorite, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO favorites (user_id, city_key, city, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, city_key) DO NOTHING
		RETURNING user_id, city_key, city, created_at
	`, fav.UserID, fav.Key, fav.City, fav.CreatedAt)
	stored, err := scanFavorite(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return favorites.Favorite{}, false, err
	}
	existing, err := scanFavorite(r.pool.QueryRow(ctx, `
		SELECT user_id, city_key, city, created_at
		FROM favorites
		WHERE user_id = $1 AND city_key = $2
	`, fav.UserID, fav.Key))
	if err != nil {
		return favorites.Favorite{}, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID int64, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND city_key = $2`, userID, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanFavorite(row pgx.Row) (favorites.Favorite, error) {
	var fav favorites.Favorite
	var created time.Time
	if err := row.Scan(&fav.UserID, &fav.Key, &fav.City, &created); err != nil {
		return favorites.Favorite{}, err
	}
	fav.CreatedAt = created.UTC()
	return fav, nil
}

var _ favorites.Repository = (*PostgresRepository)(nil)
