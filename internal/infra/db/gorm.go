package db

import (
	"fmt"
	"log/slog"
	"time"

	"pos/internal/config"
	"pos/internal/domain/model"
	"pos/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// 接続はpgxのstdlibで作り、プールの設定をしてからgormに渡す。
func Connect(cfg config.Config, log *slog.Logger) (*gorm.DB, error) {
	pgxCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pgxCfg)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(log))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	log.Info("database connected",
		"host", pgxCfg.Host,
		"port", pgxCfg.Port,
		"database", pgxCfg.Database,
		"max_open_conns", cfg.DBMaxOpenConns)

	return gdb, nil
}

// gormの共通設定。制約違反はgormのエラーに変換させる
func GormConfig(log *slog.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			logger.StdLogger(logger.Component(log, "gorm"), slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

// テーブル作成（外部キーはモデルのconstraintタグから作られる）
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Category{},
		&model.Item{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
