package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopbill/backend/internal/infrastructure/config"
	"github.com/shopbill/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the shop ledger's Postgres handle. Repositories share DB; the
// pool underneath is exposed for health checks and pool metrics.
type Database struct {
	DB   *gorm.DB
	pool *sql.DB
}

// NewDatabase opens and sizes the Postgres pool and checks that it answers.
// SQL is logged through zap at the level mapped from logLevel.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, logLevel string) (*Database, error) {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	gormLog := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(logLevel),
		logger.WithSlowThreshold(cfg.SlowThreshold))

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), GormConfig(gormLog))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := wrapDatabase(gdb)
	if err != nil {
		return nil, err
	}

	db.pool.SetMaxOpenConns(cfg.MaxOpenConns)
	db.pool.SetMaxIdleConns(cfg.MaxIdleConns)
	db.pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func wrapDatabase(gdb *gorm.DB) (*Database, error) {
	pool, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return &Database{DB: gdb, pool: pool}, nil
}

// GormConfig returns the gorm settings shared by every connection.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey, which the
// repositories report as ALREADY_EXISTS.
func GormConfig(gormLog gormlogger.Interface) *gorm.Config {
	if gormLog == nil {
		gormLog = gormlogger.Discard
	}
	return &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

// SQL returns the connection pool
func (d *Database) SQL() *sql.DB { return d.pool }

func (d *Database) Ping() error {
	if err := d.pool.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Close() error { return d.pool.Close() }
