package auth

import (
	"time"

	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"github.com/golang-jwt/jwt/v5"
)

const RefreshTokenKey = "plate_refresh_token"
const ContextUserClaim = "context_user_claim"

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// UserClaim is signed into both token kinds. Subject holds the user's public id
// and ID is a per-token id used for revocation.
type UserClaim struct {
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
	Role  string    `json:"role"`
	Kind  TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

func CreateJwtSignedString(u UserClaim) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, u)
	return token.SignedString(environment_variables.EnvironmentVariables.JWT_SECRET)
}

func ParseJwt(tokenString string) (*UserClaim, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaim{}, func(token *jwt.Token) (interface{}, error) {
		return environment_variables.EnvironmentVariables.JWT_SECRET, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaim)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
