package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User is the login identity. ConnectedChannels is a denormalized summary for
// quick status display; the credential store holds the authoritative state.
type User struct {
	ID                int64           `json:"id"`
	Email             string          `json:"email"`
	Password          string          `json:"-"`
	ConnectedChannels map[string]bool `json:"connectedChannels"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// UserClaims carries the user id in Issuer, matching what the auth middleware
// places into the gin context as user_id.
type UserClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

type ReqLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReqRegister struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
