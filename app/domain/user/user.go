package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleModerator
}

type User struct {
	ID           uint      `json:"id"`
	PublicID     string    `json:"public_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
}

type Profile struct {
	UserID      uint
	Bio         string
	Website     string
	Location    string
	SocialLinks SocialLinks
}

// UpdateUserRequest carries optional changes; nil fields are left alone.
type UpdateUserRequest struct {
	Name      *string
	AvatarURL *string
	Bio       *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	// FindByEmail returns nil, nil when no user has the email
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByPublicID returns nil, nil when no user has the id
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	// FindProfile returns nil, nil when the user has no profile yet
	FindProfile(ctx context.Context, userID uint) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}
