package usecase

import (
	"encoding/json"
	"net/http"
	"time"

	"pos/internal/domain/model"
)

// メニュー表と同じ許可表で判定する
func authorize(s model.Session, entry model.MenuEntry) error {
	if s.UserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !entry.Allows(s.Role) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

// before/afterはJSON文字列にして残す。nilなら空
func newAuditLog(s model.Session, action model.AuditAction, resource model.AuditResourceType, id int64, before, after any, now time.Time) (model.AuditLog, error) {
	b, err := auditJSON(before)
	if err != nil {
		return model.AuditLog{}, err
	}
	a, err := auditJSON(after)
	if err != nil {
		return model.AuditLog{}, err
	}
	return model.AuditLog{
		ActorUserID:  s.UserID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   id,
		BeforeJSON:   b,
		AfterJSON:    a,
		CreatedAt:    now,
	}, nil
}

func auditJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
