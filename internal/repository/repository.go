package repository

import (
	"context"
	"database/sql"
	"time"

	"door_controller/internal/models"
	"door_controller/internal/repository/db"
)

// ConfigRepo persists the single provisioned configuration record.
type ConfigRepo interface {
	Save(ctx context.Context, cfg models.DeviceConfig) error
	Load(ctx context.Context) (models.DeviceConfig, error)
}

// OperationRepo is the durable mirror of the in-memory operation history.
type OperationRepo interface {
	Append(ctx context.Context, op models.Operation) error
	List(ctx context.Context, from, to time.Time, kind string) ([]models.Operation, error)
}

type Repository struct {
	Config     ConfigRepo
	Operations OperationRepo
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		Config:     NewConfigSQLite(sqlDB),
		Operations: NewOperationSQLite(sqlDB),
	}
}

// InitDB opens the SQLite file and ensures the schema; see the db package.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
