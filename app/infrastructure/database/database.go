package database

import (
	"fmt"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"buildplate.dev/plate-api-gateway/config/environment_variables"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// Open connects to dsn, routing reads to replicaDSN when it is set.
func Open(dsn string, replicaDSN string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if replicaDSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("unable to setup replica: %w", err)
		}
	}
	return db, nil
}

// NewDB opens the primary database and brings the schema up to date.
func NewDB() (*gorm.DB, error) {
	env := environment_variables.EnvironmentVariables
	db, err := Open(env.DB_POSTGRESQL_WRITE_DSN, env.DB_POSTGRESQL_READ1_DSN)
	if err != nil {
		logger.GetLogger().
			WithField("error_code", "5c16fb53-d98c-4fc6-8bb4-9abd3c0b9e88").
			Errorf("unable to open database: %v", err)
		return nil, err
	}
	for _, model := range SchemaRegistry {
		if err = db.AutoMigrate(model); err != nil {
			logger.GetLogger().
				WithField("error_code", "75333e43-8157-4f0a-8e34-aa34e6e7c285").
				Errorf("failed to auto migrate schema: %T, error: %v", model, err)
			return nil, err
		}
	}
	if err = NewDBMigrator(db).Migrate(); err != nil {
		logger.GetLogger().
			WithField("error_code", "07217a04-80f1-466f-8d2c-cdd162dd9ccb").
			Errorf("failed to run migrations: %v", err)
		return nil, err
	}
	return db, nil
}
