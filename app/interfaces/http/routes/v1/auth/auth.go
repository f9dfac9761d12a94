package auth

import (
	"errors"
	"net/http"
	"time"

	"buildplate.dev/plate-api-gateway/app/domain/auth"
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/responses"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/gin-gonic/gin"
)

type AuthRoute struct {
	authService *auth.AuthService
}

func NewAuthRoute(authService *auth.AuthService) *AuthRoute {
	return &AuthRoute{
		authService,
	}
}

func (authRoute *AuthRoute) RegisterRouter(router gin.IRouter) {
	authRouter := router.Group("/auth")
	authRouter.POST("/signup", authRoute.Signup)
	authRouter.POST("/login", authRoute.Login)
	authRouter.GET("/refresh-token", authRoute.RefreshToken)
	authRouter.POST("/logout", authRoute.Logout)
	authRouter.GET("/me",
		authRoute.authService.JWTAuthMiddleware(),
		authRoute.authService.RegisteredUserMiddleware(),
		authRoute.GetMe,
	)
}

type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Enum(access.token)
type AccessTokenResponseObjectType string

const AccessTokenResponseObjectTypeObject = "access.token"

type AccessTokenResponse struct {
	Object      AccessTokenResponseObjectType `json:"object"`
	AccessToken string                        `json:"access_token"`
	ExpiresIn   int                           `json:"expires_in"`
}

type GetMeResponse struct {
	Object    string `json:"object"`
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// @Summary Create an account
// @Description Registers an email and password account and signs it in.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup payload"
// @Success 201 {object} AccessTokenResponse "Account created"
// @Failure 400 {object} responses.ErrorResponse "Invalid payload or passwords do not match"
// @Failure 409 {object} responses.ErrorResponse "Email already registered"
// @Router /v1/auth/signup [post]
func (authRoute *AuthRoute) Signup(reqCtx *gin.Context) {
	var req SignupRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "1b3f7c52-3d8e-4f0e-9a43-0c7e0a2e5d61",
			Error: err.Error(),
		})
		return
	}

	created, err := authRoute.authService.Signup(reqCtx.Request.Context(), auth.SignupRequest{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch):
			reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
				Code:  "d4a0c7b9-5e1f-4a8d-b0f6-7f2e9c3a1b84",
				Error: "Passwords do not match",
			})
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordTooLong):
			reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
				Code:  "6e2b8f14-0c9a-4d3e-8b57-a1f4c6d92e07",
				Error: err.Error(),
			})
		case errors.Is(err, user.ErrEmailTaken), errors.Is(err, auth.ErrSignupInProgress):
			reqCtx.AbortWithStatusJSON(http.StatusConflict, responses.ErrorResponse{
				Code:  "a7c3e9d1-2b4f-4e6a-9c8d-3f5b7a1e0c26",
				Error: "User already registered",
			})
		default:
			logger.GetLogger().Errorf("signup failed: %v", err)
			reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
				Code: "f0e1d2c3-b4a5-4968-8776-5a4b3c2d1e0f",
			})
		}
		return
	}
	authRoute.respondWithTokens(reqCtx, http.StatusCreated, created)
}

// @Summary Sign in
// @Description Exchanges an email and password for an access token and a refresh cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AccessTokenResponse "Signed in"
// @Failure 401 {object} responses.ErrorResponse "Invalid login credentials"
// @Router /v1/auth/login [post]
func (authRoute *AuthRoute) Login(reqCtx *gin.Context) {
	var req LoginRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "2c9e4a71-8f3b-4d05-a6e2-9b1c7d4f3e58",
			Error: err.Error(),
		})
		return
	}
	u, err := authRoute.authService.Login(reqCtx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code:  "5b8d2f6e-1a4c-4e97-b3d0-8c6a2e9f1d47",
				Error: "Invalid login credentials",
			})
			return
		}
		logger.GetLogger().Errorf("login failed: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code: "9e4c1a7b-3d6f-4b28-a5e0-7c2d9f4b1a63",
		})
		return
	}
	authRoute.respondWithTokens(reqCtx, http.StatusOK, u)
}

// @Summary Get user profile
// @Description Retrieves the profile of the authenticated user based on the provided JWT.
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} GetMeResponse "Successfully retrieved user profile"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized (e.g., missing or invalid JWT)"
// @Router /v1/auth/me [get]
func (authRoute *AuthRoute) GetMe(reqCtx *gin.Context) {
	u, ok := auth.GetUserFromContext(reqCtx)
	if !ok {
		reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
			Code: "fbc49daf-2f73-4778-9362-5680da391190",
		})
		return
	}
	reqCtx.JSON(http.StatusOK, GetMeResponse{
		Object:    "me",
		ID:        u.PublicID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
	})
}

// @Summary Refresh an access token
// @Description Use a valid refresh token to obtain a new access token. The refresh token is typically sent in a cookie.
// @Tags Authentication
// @Produce json
// @Success 200 {object} AccessTokenResponse "Successfully refreshed the access token"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized (e.g., expired, revoked or missing refresh token)"
// @Router /v1/auth/refresh-token [get]
func (authRoute *AuthRoute) RefreshToken(reqCtx *gin.Context) {
	refreshTokenString, err := reqCtx.Cookie(auth.RefreshTokenKey)
	if err != nil || refreshTokenString == "" {
		reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
			Code: "b95e8123-2590-48ed-bbad-e02d88464513",
		})
		return
	}

	pair, _, err := authRoute.authService.Refresh(reqCtx.Request.Context(), refreshTokenString)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
			clearRefreshCookie(reqCtx)
			reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
				Code:  "7c7b8a48-311c-4beb-a2a1-1c13a87610bb",
				Error: err.Error(),
			})
			return
		}
		logger.GetLogger().Errorf("refresh failed: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code: "79373f8e-d80e-489c-95ba-9e6099ef7539",
		})
		return
	}
	writeTokens(reqCtx, http.StatusOK, pair)
}

// @Summary Sign out
// @Description Revokes the refresh token cookie and clears it.
// @Tags Authentication
// @Success 200 {object} map[string]string "Signed out"
// @Router /v1/auth/logout [post]
func (authRoute *AuthRoute) Logout(reqCtx *gin.Context) {
	refreshTokenString, err := reqCtx.Cookie(auth.RefreshTokenKey)
	if err == nil && refreshTokenString != "" {
		err := authRoute.authService.Logout(reqCtx.Request.Context(), refreshTokenString)
		if err != nil && !errors.Is(err, auth.ErrInvalidToken) {
			logger.GetLogger().Errorf("logout failed: %v", err)
			reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
				Code: "0e596742-64bb-4904-8429-4c09ce8434b9",
			})
			return
		}
	}
	clearRefreshCookie(reqCtx)
	reqCtx.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

func (authRoute *AuthRoute) respondWithTokens(reqCtx *gin.Context, status int, u *user.User) {
	pair, err := authRoute.authService.IssueTokens(u)
	if err != nil {
		logger.GetLogger().Errorf("failed to issue tokens: %v", err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code: "3a6f9c2e-7b1d-4e58-8a04-d9c5b2e7f163",
		})
		return
	}
	writeTokens(reqCtx, status, pair)
}

func writeTokens(reqCtx *gin.Context, status int, pair *auth.TokenPair) {
	http.SetCookie(reqCtx.Writer, &http.Cookie{
		Name:     auth.RefreshTokenKey,
		Value:    pair.RefreshToken,
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})
	reqCtx.JSON(status, AccessTokenResponse{
		Object:      AccessTokenResponseObjectTypeObject,
		AccessToken: pair.AccessToken,
		ExpiresIn:   int(time.Until(pair.AccessExpiresAt).Seconds()),
	})
}

func clearRefreshCookie(reqCtx *gin.Context) {
	http.SetCookie(reqCtx.Writer, &http.Cookie{
		Name:     auth.RefreshTokenKey,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})
}
