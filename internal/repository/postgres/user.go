package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kitbuilder587/docsmith/internal/domain"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	query := `
        INSERT INTO users (id, username)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username
        RETURNING id, username, default_type, default_tone, default_provider, default_preset, created_at
    `

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, telegramID, username))
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
        SELECT id, username, default_type, default_tone, default_provider, default_preset, created_at
        FROM users
        WHERE id = $1
    `

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) UpdatePreferences(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users
        SET default_type = $2, default_tone = $3, default_provider = $4, default_preset = $5
        WHERE id = $1
    `

	result, err := r.db.Pool.Exec(ctx, query,
		user.ID,
		user.DefaultType.String(),
		user.DefaultTone.String(),
		user.DefaultProvider,
		user.DefaultPreset.String(),
	)
	if err != nil {
		return fmt.Errorf("update user preferences: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var docType, tone, preset string
	err := row.Scan(
		&user.ID,
		&user.Username,
		&docType,
		&tone,
		&user.DefaultProvider,
		&preset,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.TelegramID = user.ID
	user.DefaultType = domain.DocumentType(docType)
	user.DefaultTone = domain.Tone(tone)
	user.DefaultPreset = domain.PresetType(preset)
	return &user, nil
}
