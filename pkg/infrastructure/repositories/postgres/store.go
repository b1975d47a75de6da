// Package postgres implements the kitchen repositories on PostgreSQL with gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vsinha/kitchen/pkg/domain/entities"
	"github.com/vsinha/kitchen/pkg/domain/repositories"
	"github.com/vsinha/kitchen/pkg/infrastructure/repositories/reporting"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is a gorm-backed repositories.Store
type Store struct {
	db      *gorm.DB
	history repositories.HistoryRepository
	inTx    bool
}

// Verify interface compliance
var _ repositories.Store = (*Store)(nil)

// Open connects to dsn. Aggregate reads use a separate sqlx connection when
// reportingDSN is set, otherwise they share the primary pool.
func Open(dsn, reportingDSN string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var reader *sqlx.DB
	if reportingDSN != "" {
		reader, err = sqlx.Connect("postgres", reportingDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to reporting database: %w", err)
		}
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		reader = sqlx.NewDb(sqlDB, "postgres")
	}

	logger.Info("database connection established", zap.Bool("separate_reporting", reportingDSN != ""))
	return New(db, reporting.NewHistoryRepository(reader)), nil
}

// New wraps an open gorm handle
func New(db *gorm.DB, history repositories.HistoryRepository) *Store {
	return &Store{db: db, history: history}
}

// Migrate creates or updates the schema
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ingredients() repositories.IngredientRepository { return &IngredientRepository{db: s.db} }
func (s *Store) Recipes() repositories.RecipeRepository         { return &RecipeRepository{db: s.db} }
func (s *Store) Servings() repositories.ServingRepository       { return &ServingRepository{db: s.db} }
func (s *Store) Deliveries() repositories.DeliveryRepository    { return &DeliveryRepository{db: s.db} }
func (s *Store) Reports() repositories.ReportRepository         { return &ReportRepository{db: s.db} }
func (s *Store) Alerts() repositories.AlertRepository           { return &AlertRepository{db: s.db} }
func (s *Store) Users() repositories.UserRepository             { return &UserRepository{db: s.db} }
func (s *Store) History() repositories.HistoryRepository        { return s.history }

// Atomically runs fn inside a database transaction. Nested calls join the
// outer transaction.
func (s *Store) Atomically(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, history: s.history, inTx: true})
	})
}

// translate maps gorm errors onto domain errors
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return entities.NewNotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return entities.NewConflictError(entity, "already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return entities.NewConflictError(entity, "referenced by or references another record")
	default:
		return fmt.Errorf("%s query failed: %w", entity, err)
	}
}

func paginate(db *gorm.DB, page repositories.Page) *gorm.DB {
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}
	return db
}

func between(db *gorm.DB, column string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		db = db.Where(column+" >= ?", from)
	}
	if !to.IsZero() {
		db = db.Where(column+" < ?", to)
	}
	return db
}
