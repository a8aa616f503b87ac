package repository

import (
	"context"

	"channelhub/domain/model"
)

type IUser interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	// SetChannelConnected flips the denormalized connection summary flag.
	SetChannelConnected(ctx context.Context, id int64, platform string, connected bool) error
}
