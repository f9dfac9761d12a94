package userrepo

import (
	"context"
	"errors"

	domain "buildplate.dev/plate-api-gateway/app/domain/user"
	"buildplate.dev/plate-api-gateway/app/infrastructure/database/dbschema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) domain.UserRepository {
	return &UserGormRepository{
		db: db,
	}
}

func (r *UserGormRepository) Create(ctx context.Context, u *domain.User) error {
	model := dbschema.NewSchemaUser(u)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailTaken
		}
		return err
	}

	u.ID = model.ID
	return nil
}

func (r *UserGormRepository) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(dbschema.NewSchemaUser(u)).Error
}

func (r *UserGormRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var model dbschema.User
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		return nil, err
	}
	return model.EtoD(), nil
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserGormRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.User, error) {
	return r.findOne(ctx, "public_id = ?", publicID)
}

func (r *UserGormRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var models []dbschema.User
	if err := r.db.WithContext(ctx).Where(query, arg).Limit(2).Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	if len(models) != 1 {
		return nil, errors.New("duplicated user")
	}
	return models[0].EtoD(), nil
}

func (r *UserGormRepository) FindProfile(ctx context.Context, userID uint) (*domain.Profile, error) {
	var models []dbschema.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&models).Error; err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0].EtoD(), nil
}

func (r *UserGormRepository) SaveProfile(ctx context.Context, p *domain.Profile) error {
	model := dbschema.NewSchemaUserProfile(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio", "website", "location", "social_links", "updated_at"}),
		}).
		Create(model).Error
}
