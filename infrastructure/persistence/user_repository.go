package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"channelhub/domain/model"
	"channelhub/domain/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ConnectedChannels == nil {
		user.ConnectedChannels = map[string]bool{}
	}
	channels, err := json.Marshal(user.ConnectedChannels)
	if err != nil {
		return err
	}

	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO public.user (email, password, connected_channels, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.QueryRowContext(ctx, user.Email, user.Password, channels, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.email, u.password, u.connected_channels, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.email = $1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()

	return scanUser(stmt.QueryRowContext(ctx, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT u.id, u.email, u.password, u.connected_channels, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()

	return scanUser(stmt.QueryRowContext(ctx, id))
}

func (r *UserRepository) SetChannelConnected(ctx context.Context, id int64, platform string, connected bool) error {
	stmt, err := r.db.PrepareContext(ctx, `UPDATE public.user
	SET connected_channels = jsonb_set(connected_channels, ARRAY[$2], to_jsonb($3::boolean), true), updated_at = $4
	WHERE id = $1`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, id, platform, connected, time.Now().UTC())
	return err
}

func scanUser(row *sql.Row) (model.User, error) {
	var user model.User
	var channels []byte
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &channels, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return model.User{}, err
	}
	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &user.ConnectedChannels); err != nil {
			return model.User{}, err
		}
	}
	if user.ConnectedChannels == nil {
		user.ConnectedChannels = map[string]bool{}
	}
	return user, nil
}
