package dbschema

import (
	"buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database"
	"gorm.io/datatypes"
)

func init() {
	database.RegisterSchemaForAutoMigrate(UserProfile{})
}

type UserProfile struct {
	BaseModel
	UserID      uint `gorm:"not null;uniqueIndex"`
	Bio         string
	Website     string
	Location    string
	SocialLinks datatypes.JSONType[user.SocialLinks]
}

func NewSchemaUserProfile(p *user.Profile) *UserProfile {
	return &UserProfile{
		UserID:      p.UserID,
		Bio:         p.Bio,
		Website:     p.Website,
		Location:    p.Location,
		SocialLinks: datatypes.NewJSONType(p.SocialLinks),
	}
}

func (p *UserProfile) EtoD() *user.Profile {
	return &user.Profile{
		UserID:      p.UserID,
		Bio:         p.Bio,
		Website:     p.Website,
		Location:    p.Location,
		SocialLinks: p.SocialLinks.Data(),
	}
}
