package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"channelhub/domain/model"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	createdAt := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 3, 12, 10, 15, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.email, u.password, u.connected_channels, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)).
		ExpectQuery().WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "connected_channels", "created_at", "updated_at"}).
			AddRow(int64(1), "merchant@example.com", "a252f77af72638ea5a0f9e5fbe5f2b2e", []byte(`{"shopify":true}`), createdAt, updatedAt))

	res, err := repository.GetByID(context.Background(), 1)
	expected := model.User{
		ID:                1,
		Email:             "merchant@example.com",
		Password:          "a252f77af72638ea5a0f9e5fbe5f2b2e",
		ConnectedChannels: map[string]bool{"shopify": true},
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}

	require.NoError(t, err)
	require.Equal(t, expected, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	createdAt := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	updatedAt := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.email, u.password, u.connected_channels, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.email = $1`)).
		ExpectQuery().WithArgs("merchant@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "connected_channels", "created_at", "updated_at"}).
			AddRow(int64(7), "merchant@example.com", "a252f77af72638ea5a0f9e5fbe5f2b2e", []byte(`{}`), createdAt, updatedAt))

	res, err := repository.GetByEmail(context.Background(), "merchant@example.com")

	require.NoError(t, err)
	require.Equal(t, int64(7), res.ID)
	require.Equal(t, "merchant@example.com", res.Email)
	require.NotNil(t, res.ConnectedChannels)
	require.Empty(t, res.ConnectedChannels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO public.user (email, password, connected_channels, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`)).
		ExpectQuery().
		WithArgs("merchant@example.com", "a252f77af72638ea5a0f9e5fbe5f2b2e", []byte(`{}`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	user := model.User{
		Email:    "merchant@example.com",
		Password: "a252f77af72638ea5a0f9e5fbe5f2b2e",
	}

	err = repository.Create(context.Background(), &user)
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetChannelConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`UPDATE public.user
	SET connected_channels = jsonb_set(connected_channels, ARRAY[$2], to_jsonb($3::boolean), true), updated_at = $4
	WHERE id = $1`)).
		ExpectExec().
		WithArgs(int64(7), "shopify", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repository.SetChannelConnected(context.Background(), 7, "shopify", true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_PrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.email, u.password, u.connected_channels, u.created_at, u.updated_at
	FROM public.user AS u
	WHERE u.id = $1`)).
		WillReturnError(fmt.Errorf("prepare error"))

	res, err := repository.GetByID(context.Background(), 1)

	require.Error(t, err)
	require.Equal(t, model.User{}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}
