package usecase

import (
	"context"
	"net/http"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"
)

type AuditLogUsecase struct {
	audit repo.AuditLogRepository
}

func NewAuditLogUsecase(audit repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{audit: audit}
}

// GET /audit-logs のクエリ（空は絞り込みなし）
type ListAuditLogsInput struct {
	Action       string
	ResourceType string
	ResourceID   int64
	ActorUserID  int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, s model.Session, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if err := authorize(s, model.MenuUsers); err != nil {
		return nil, err
	}
	if in.Limit < 0 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		f.ResourceType = &rt
	}
	if in.ResourceID > 0 {
		f.ResourceID = &in.ResourceID
	}
	if in.ActorUserID > 0 {
		f.ActorUserID = &in.ActorUserID
	}

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	return logs, nil
}
