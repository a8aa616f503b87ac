package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"channelhub/domain/dto"
	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/configuration"
	"channelhub/infrastructure/logger"
)

const tokenLifetime = 24 * time.Hour

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
	GetDetails(ctx context.Context, userID int64) dto.Res
}

type userUsecase struct {
	userRepo repository.IUser
}

func NewUserUsecase(userRepo repository.IUser) IUserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.GetLogger().WithField("error", err).Info("Login lookup failed")
		return dto.Res{ResponseCode: "401", ResponseMessage: "Invalid email or password"}
	}
	if user.Password != req.Password {
		return dto.Res{ResponseCode: "401", ResponseMessage: "Invalid email or password"}
	}

	token, err := u.signToken(user)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while signing token")
		return dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"}
	}

	return dto.Res{
		ResponseCode:    "200",
		ResponseMessage: "OK",
		Data:            dto.ResAuth{Token: token, ConnectedChannels: user.ConnectedChannels},
	}
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	if _, err := u.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return dto.Res{ResponseCode: "409", ResponseMessage: "Email already registered"}
	}

	user := model.User{Email: req.Email, Password: req.Password}
	if err := u.userRepo.Create(ctx, &user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		return dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"}
	}

	token, err := u.signToken(user)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while signing token")
		return dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"}
	}

	return dto.Res{
		ResponseCode:    "201",
		ResponseMessage: "Created",
		Data:            dto.ResAuth{Token: token},
	}
}

func (u *userUsecase) GetDetails(ctx context.Context, userID int64) dto.Res {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return dto.Res{ResponseCode: "404", ResponseMessage: "User not found"}
	}
	return dto.Res{ResponseCode: "200", ResponseMessage: "OK", Data: user}
}

func (u *userUsecase) signToken(user model.User) (string, error) {
	now := time.Now()
	claims := model.UserClaims{
		Email: user.Email,
		StandardClaims: jwt.StandardClaims{
			Issuer:    strconv.FormatInt(user.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(tokenLifetime).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configuration.C.App.SecretKey))
}
