package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// KeysRepo validates the API keys gateways authenticate with
type KeysRepo struct {
	db *sqlx.DB
}

func NewApiKeysRepo(db *sqlx.DB) *KeysRepo {
	return &KeysRepo{db}
}

func (r *KeysRepo) GetStatus(ctx context.Context, key string) (*entities.ApiKey, error) {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	var keyRes entities.ApiKey
	err = r.db.QueryRowxContext(ctx, r.db.Rebind(constants.GetStatusByApiKey), id).StructScan(&keyRes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch api key: %w", err)
	}

	return &keyRes, nil
}

// Create issues a new active key and returns its value.
func (r *KeysRepo) Create(ctx context.Context) (string, error) {
	var id int64
	if err := r.db.QueryRowxContext(ctx, constants.InsertApiKey).Scan(&id); err != nil {
		return "", fmt.Errorf("insert api key: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}
