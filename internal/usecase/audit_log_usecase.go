package usecase

import (
	"context"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 監査ログの閲覧（管理者のみ）。書き込みは各usecaseが行う。
type AuditLogUsecase struct {
	audit repo.AuditLogRepository
}

func NewAuditLogUsecase(audit repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{audit: audit}
}

type ListAuditLogsInput struct {
	ActorUserID  *int64
	Action       string
	ResourceType string
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

func (u *AuditLogUsecase) List(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		ResourceID:  in.ResourceID,
		From:        in.From,
		To:          in.To,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}

	if s := strings.TrimSpace(in.Action); s != "" {
		switch model.AuditAction(s) {
		case model.AuditActionUpdateStock, model.AuditActionUpdateOrderStatus,
			model.AuditActionRefundOrder, model.AuditActionDeleteOrder:
			a := model.AuditAction(s)
			f.Action = &a
		default:
			return nil, newValidationError("invalid action %q", s)
		}
	}

	if s := strings.TrimSpace(in.ResourceType); s != "" {
		switch model.AuditResourceType(s) {
		case model.AuditResourceProduct, model.AuditResourceOrder:
			rt := model.AuditResourceType(s)
			f.ResourceType = &rt
		default:
			return nil, newValidationError("invalid resource_type %q", s)
		}
	}

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
