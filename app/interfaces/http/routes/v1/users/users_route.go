package users

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"buildplate.dev/plate-api-gateway/app/domain/auth"
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/interfaces/http/responses"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"github.com/gin-gonic/gin"
)

const (
	maxNameLength = 100
	maxBioLength  = 1000
)

type UsersRoute struct {
	authService *auth.AuthService
	userService *user.UserService
}

func NewUsersRoute(authService *auth.AuthService, userService *user.UserService) *UsersRoute {
	return &UsersRoute{
		authService: authService,
		userService: userService,
	}
}

func (route *UsersRoute) RegisterRouter(router gin.IRouter) {
	usersRouter := router.Group("/users/me",
		route.authService.JWTAuthMiddleware(),
		route.authService.RegisteredUserMiddleware(),
	)
	usersRouter.PATCH("", route.UpdateMe)
	usersRouter.GET("/profile", route.GetProfile)
}

type UpdateMeRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

type SocialLinksResponse struct {
	Twitter  string `json:"twitter,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

type ProfileResponse struct {
	Object      string              `json:"object"`
	Bio         string              `json:"bio"`
	Website     string              `json:"website"`
	Location    string              `json:"location"`
	SocialLinks SocialLinksResponse `json:"social_links"`
}

type UserResponse struct {
	Object    string           `json:"object"`
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Role      string           `json:"role"`
	AvatarURL string           `json:"avatar_url"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
}

func (req UpdateMeRequest) validate() error {
	if req.Name != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Name)) > maxNameLength {
		return errors.New("name is too long")
	}
	if req.Bio != nil && utf8.RuneCountInString(*req.Bio) > maxBioLength {
		return errors.New("bio is too long")
	}
	if req.AvatarURL != nil && strings.TrimSpace(*req.AvatarURL) != "" {
		u, err := url.Parse(strings.TrimSpace(*req.AvatarURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("avatar_url must be an http(s) url")
		}
	}
	return nil
}

// @Summary Update the current user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateMeRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/users/me [patch]
func (route *UsersRoute) UpdateMe(reqCtx *gin.Context) {
	current, ok := auth.GetUserFromContext(reqCtx)
	if !ok {
		reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
			Code: "4e7a1c93-6b2d-4f85-a0c8-e3b9d6f2a154",
		})
		return
	}
	var req UpdateMeRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "8b2f6d4a-1e9c-4a73-b5d0-c7e3f1a9b286",
			Error: err.Error(),
		})
		return
	}
	if err := req.validate(); err != nil {
		reqCtx.AbortWithStatusJSON(http.StatusBadRequest, responses.ErrorResponse{
			Code:  "c1d9e3f7-5a2b-4c68-9e14-b8f0a6d2c375",
			Error: err.Error(),
		})
		return
	}

	updated, profile, err := route.userService.UpdateUser(reqCtx.Request.Context(), current.PublicID, user.UpdateUserRequest{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			reqCtx.AbortWithStatusJSON(http.StatusNotFound, responses.ErrorResponse{
				Code: "e2a8c5f1-9d3b-4e76-a1c4-f6b0d8e2a947",
			})
			return
		}
		logger.GetLogger().Errorf("update user %s failed: %v", current.PublicID, err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code: "7f3b9e2d-4c1a-4d58-b6e9-a2c8f0d4b731",
		})
		return
	}
	reqCtx.JSON(http.StatusOK, toUserResponse(updated, profile))
}

// @Summary Get the current user's profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Router /v1/users/me/profile [get]
func (route *UsersRoute) GetProfile(reqCtx *gin.Context) {
	current, ok := auth.GetUserFromContext(reqCtx)
	if !ok {
		reqCtx.AbortWithStatusJSON(http.StatusUnauthorized, responses.ErrorResponse{
			Code: "4e7a1c93-6b2d-4f85-a0c8-e3b9d6f2a154",
		})
		return
	}
	profile, err := route.userService.GetProfile(reqCtx.Request.Context(), current.ID)
	if err != nil {
		logger.GetLogger().Errorf("load profile of %s failed: %v", current.PublicID, err)
		reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, responses.ErrorResponse{
			Code: "0a6d3f8c-2e5b-4b19-9c7a-d4f1e8b3a062",
		})
		return
	}
	reqCtx.JSON(http.StatusOK, toProfileResponse(profile))
}

func toProfileResponse(p *user.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		Object:   "profile",
		Bio:      p.Bio,
		Website:  p.Website,
		Location: p.Location,
		SocialLinks: SocialLinksResponse{
			Twitter:  p.SocialLinks.Twitter,
			Github:   p.SocialLinks.Github,
			Linkedin: p.SocialLinks.Linkedin,
		},
	}
}

func toUserResponse(u *user.User, p *user.Profile) UserResponse {
	return UserResponse{
		Object:    "user",
		ID:        u.PublicID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		Profile:   toProfileResponse(p),
	}
}
