package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildplate.dev/plate-api-gateway/app/infrastructure/cache"
	"buildplate.dev/plate-api-gateway/app/utils/idgen"
	"buildplate.dev/plate-api-gateway/app/utils/logger"
)

type UserService struct {
	userrepo UserRepository
	cache    cache.CacheService
}

func NewService(userrepo UserRepository, cacheService cache.CacheService) *UserService {
	return &UserService{
		userrepo: userrepo,
		cache:    cacheService,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) RegisterUser(ctx context.Context, user *User) (*User, error) {
	publicId, err := s.generatePublicID()
	if err != nil {
		return nil, err
	}
	user.PublicID = publicId
	user.Email = NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := s.userrepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.userrepo.FindByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*User, error) {
	return s.userrepo.FindByID(ctx, id)
}

// FindByPublicID reads through the cache; a missing user is ErrUserNotFound.
func (s *UserService) FindByPublicID(ctx context.Context, publicID string) (*User, error) {
	var user User
	err := s.cache.GetWithFallback(ctx, fmt.Sprintf(cache.UserByPublicIDKey, publicID), &user, func() (any, error) {
		found, err := s.userrepo.FindByPublicID(ctx, publicID)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, ErrUserNotFound
		}
		return found, nil
	}, cache.UserCacheExpiration)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies req to the stored user. The cached copy is dropped afterwards.
func (s *UserService) UpdateUser(ctx context.Context, publicID string, req UpdateUserRequest) (*User, *Profile, error) {
	user, err := s.userrepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	user.UpdatedAt = time.Now()
	if err := s.userrepo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
		if err := s.userrepo.SaveProfile(ctx, profile); err != nil {
			return nil, nil, err
		}
	}

	if err := s.cache.Delete(ctx, fmt.Sprintf(cache.UserByPublicIDKey, publicID)); err != nil {
		logger.GetLogger().Warnf("failed to drop cached user %s: %v", publicID, err)
	}
	return user, profile, nil
}

// GetProfile returns the stored profile or an empty one.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	profile, err := s.userrepo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &Profile{UserID: userID}
	}
	return profile, nil
}

func (s *UserService) generatePublicID() (string, error) {
	return idgen.NewUserID()
}
