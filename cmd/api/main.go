package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pos/internal/config"
	"pos/internal/handler"
	"pos/internal/infra/db"
	infraRepo "pos/internal/infra/repository"
	"pos/internal/infra/sheets"
	"pos/internal/infra/token"
	"pos/internal/logger"
	"pos/internal/server"
	"pos/internal/usecase"
	auth "pos/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envはあれば読む（本番は環境変数）
	_ = godotenv.Load(".env", "../.env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Environment: cfg.GoEnv,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	//Repository（GORM実装）生成
	itemRepo := infraRepo.NewItemGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	reportRepo := infraRepo.NewReportGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	//アンケートは設定があるときだけ
	var feedbackSource usecase.ResponseSource
	if cfg.FeedbackSpreadsheetID != "" {
		src, err := sheets.NewResponseSource(ctx, sheets.Config{
			SpreadsheetID:   cfg.FeedbackSpreadsheetID,
			Range:           cfg.FeedbackRange,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return err
		}
		feedbackSource = src
	} else {
		log.Warn("feedback spreadsheet is not configured")
	}

	//Usecase生成
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	meUC := usecase.NewMeUsecase(userRepo)
	orderUC := usecase.NewOrderUsecase(txm, itemRepo, orderRepo, orderItemRepo, clock, logger.Component(log, "order"))
	itemUC := usecase.NewItemUsecase(itemRepo, categoryRepo, auditRepo, clock, logger.Component(log, "item"))
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, clock)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, hasher, clock, logger.Component(log, "user"))
	reportUC := usecase.NewReportUsecase(reportRepo, clock)
	feedbackUC := usecase.NewFeedbackUsecase(feedbackSource, logger.Component(log, "feedback"))
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//初回の管理者
	if cfg.AdminEmail != "" {
		if err := userUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	//Handler生成
	e := server.New(cfg, log, userRepo, server.Handlers{
		Auth:       handler.NewAuthHandler(loginUC, meUC),
		Orders:     handler.NewOrderHandler(orderUC),
		Items:      handler.NewItemHandler(itemUC),
		Categories: handler.NewCategoryHandler(categoryUC),
		Users:      handler.NewUserHandler(userUC),
		Reports:    handler.NewReportHandler(reportUC),
		Feedback:   handler.NewFeedbackHandler(feedbackUC),
		AuditLogs:  handler.NewAuditLogHandler(auditUC),
	})

	//Server起動
	return server.Start(ctx, e, cfg.Addr(), log)
}
