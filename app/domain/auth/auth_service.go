package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/requests"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/responses"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes and refuses to hash longer input
	MaxPasswordBytes = 72
)

var validate = validator.New()

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	ErrSignupInProgress   = errors.New("a signup for this email is already in progress")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

type SignupRequest struct {
	Email           string
	Password        string
	PasswordConfirm string
}

type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AuthService struct {
	userService *user.UserService
	cache       cache.CacheService
}

func NewAuthService(userService *user.UserService, cacheService cache.CacheService) *AuthService {
	return &AuthService{
		userService: userService,
		cache:       cacheService,
	}
}

type UserContextKey string

const (
	UserContextKeyEntity UserContextKey = "UserContextKeyEntity"
	UserContextKeyID     UserContextKey = "UserContextKeyID"
)

// Signup creates a password account. Concurrent signups for one email are
// serialised through the cache lock.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*user.User, error) {
	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	email := user.NormalizeEmail(req.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(req.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	unlock, err := s.cache.Lock(ctx, fmt.Sprintf(cache.UserLockKey, email), cache.UserLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockTaken) {
			return nil, ErrSignupInProgress
		}
		return nil, err
	}
	defer unlock()

	existing, err := s.userService.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userService.RegisterUser(ctx, &user.User{
		Name:         strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
		Enabled:      true,
	})
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (*user.User, error) {
	u, err := s.userService.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Enabled || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) IssueTokens(u *user.User) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(AccessTokenTTL)
	accessToken, err := CreateJwtSignedString(newClaim(u, TokenKindAccess, now, accessExp))
	if err != nil {
		return nil, err
	}
	refreshExp := now.Add(RefreshTokenTTL)
	refreshToken, err := CreateJwtSignedString(newClaim(u, TokenKindRefresh, now, refreshExp))
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func newClaim(u *user.User, kind TokenKind, issuedAt time.Time, expiresAt time.Time) UserClaim {
	return UserClaim{
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.PublicID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// ParseToken verifies the signature, expiry and kind of tokenString.
func (s *AuthService) ParseToken(tokenString string, kind TokenKind) (*UserClaim, error) {
	claims, err := ParseJwt(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *user.User, error) {
	claims, err := s.ParseToken(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.cache.Exists(ctx, fmt.Sprintf(cache.RevokedTokenKey, claims.ID))
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}
	u, err := s.userService.FindByPublicID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if !u.Enabled {
		return nil, nil, ErrInvalidToken
	}
	if err := s.consume(ctx, claims); err != nil {
		return nil, nil, err
	}
	pair, err := s.IssueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Logout revokes refreshToken until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.ParseToken(refreshToken, TokenKindRefresh)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

// consume marks the refresh token as used. Only one caller can take the revocation key,
// so a token can be rotated once.
func (s *AuthService) consume(ctx context.Context, claims *UserClaim) error {
	ttl := RefreshTokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return ErrInvalidToken
	}
	// the key is left to expire, never unlocked
	if _, err := s.cache.Lock(ctx, fmt.Sprintf(cache.RevokedTokenKey, claims.ID), ttl); err != nil {
		if errors.Is(err, cache.ErrLockTaken) {
			return ErrTokenRevoked
		}
		return err
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *UserClaim) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, fmt.Sprintf(cache.RevokedTokenKey, claims.ID), true, ttl)
}

func (s *AuthService) JWTAuthMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		tokenString, ok := requests.GetTokenFromBearer(reqCtx)
		if !ok {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "55312c8d-4fa4-4ecf-a0a2-6fee16c8d7e0",
			})
			return
		}
		claims, err := s.ParseToken(tokenString, TokenKindAccess)
		if err != nil {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "9d7a21c4-d94c-4451-841b-4d9333f86942",
			})
			return
		}
		reqCtx.Set(ContextUserClaim, claims)
		SetUserIDToContext(reqCtx, claims.Subject)
		reqCtx.Next()
	}
}

// Verify user from public ID
func (s *AuthService) RegisteredUserMiddleware() gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		ctx := reqCtx.Request.Context()
		userPublicId, ok := GetUserIDFromContext(reqCtx)
		if !ok {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "3296ce86-783b-4c05-9fdb-930d3713024e",
			})
			return
		}
		if userPublicId == "" {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "80e1017d-038a-48c1-9de7-c3cdffdddb95",
			})
			return
		}
		u, err := s.userService.FindByPublicID(ctx, userPublicId)
		if err != nil {
			if !errors.Is(err, user.ErrUserNotFound) {
				logger.GetLogger().Errorf("failed to load user %s: %v", userPublicId, err)
			}
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "6272df83-f538-421b-93ba-c2b6f6d39f39",
			})
			return
		}
		if !u.Enabled {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code: "b1ef40e7-9db9-477d-bb59-f3783585195d",
			})
			return
		}
		SetUserToContext(reqCtx, u)
		reqCtx.Next()
	}
}

func GetUserClaimFromContext(reqCtx *gin.Context) (*UserClaim, bool) {
	v, ok := reqCtx.Get(ContextUserClaim)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*UserClaim)
	return claims, ok
}

func GetUserFromContext(reqCtx *gin.Context) (*user.User, bool) {
	v, ok := reqCtx.Get(string(UserContextKeyEntity))
	if !ok {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}

func SetUserToContext(reqCtx *gin.Context, user *user.User) {
	reqCtx.Set(string(UserContextKeyEntity), user)
}

func GetUserIDFromContext(reqCtx *gin.Context) (string, bool) {
	userId, ok := reqCtx.Get(string(UserContextKeyID))
	if !ok {
		return "", false
	}
	v, ok := userId.(string)
	if !ok {
		return "", false
	}
	return v, true
}

func SetUserIDToContext(reqCtx *gin.Context, v string) {
	reqCtx.Set(string(UserContextKeyID), v)
}
