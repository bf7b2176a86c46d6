package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	audit repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, audit repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, audit: audit}
}

type AdminUpdateOrderInput struct {
	Status *string
	Remark *string
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Pages int64         `json:"pages"`
}

type OrderStatisticsOutput struct {
	StatusCounts map[string]int64 `json:"status_counts"`
	TodayCount   int64            `json:"today_count"`
	Revenue      decimal.Decimal  `json:"revenue"`
}

// 売上として数えるステータス。pending/refunding/refundedは含めない。
var revenueStatuses = []model.OrderStatus{
	model.OrderStatusPaid,
	model.OrderStatusShipped,
	model.OrderStatusCompleted,
}

// 注文一覧（絞り込みなし）
func (u *AdminOrderUsecase) List(ctx context.Context, page int, limit int) (OrderListOutput, error) {
	return u.Filter(ctx, repo.OrderListFilter{Page: page, Limit: limit})
}

// 注文検索（注文番号/ユーザー/ステータス/期間/金額帯）
func (u *AdminOrderUsecase) Filter(ctx context.Context, f repo.OrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, newValidationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, newValidationError("invalid limit")
	}
	if f.Status != "" {
		if _, ok := ParseOrderStatus(f.Status); !ok {
			return OrderListOutput{}, newValidationError("invalid status %q", f.Status)
		}
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return err
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			items = append(items, toOrderOutput(o, lines))
		}

		out = OrderListOutput{
			Items: items,
			Total: total,
			Page:  f.Page,
			Limit: f.Limit,
			Pages: (total + int64(f.Limit) - 1) / int64(f.Limit),
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス・備考の更新。遷移は注文本体と同じガードを通す
// （現在と同じステータスの指定も遷移表に無いので弾かれる）。
func (u *AdminOrderUsecase) Update(ctx context.Context, actorUserID int64, orderID int64, in AdminUpdateOrderInput) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, newValidationError("invalid id")
	}

	var to model.OrderStatus
	if in.Status != nil {
		parsed, ok := ParseOrderStatus(strings.TrimSpace(*in.Status))
		if !ok {
			return OrderOutput{}, newValidationError("invalid status %q", *in.Status)
		}
		to = parsed
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		if in.Status != nil {
			before := o.Status
			if err := applyTransition(ctx, r, actorUserID, o, to); err != nil {
				return err
			}
			o.Status = to

			if err := u.writeStatusAudit(ctx, actorUserID, model.AuditActionUpdateOrderStatus, orderID, before, to); err != nil {
				return err
			}
		}

		if in.Remark != nil {
			if err := r.Orders().UpdateRemark(ctx, orderID, strings.TrimSpace(*in.Remark)); err != nil {
				return err
			}
			o.Remark = strings.TrimSpace(*in.Remark)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 物理削除（明細ごと）
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorUserID int64, orderID int64) error {
	if actorUserID <= 0 {
		return ErrUnauthorized
	}
	if orderID <= 0 {
		return newValidationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return err
		}

		return u.audit.Create(ctx, model.AuditLog{
			ActorUserID:  actorUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"order_number":%q,"status":%q}`, o.OrderNumber, o.Status),
			CreatedAt:    time.Now(),
		})
	})
}

// Refund は refunding → refunded を一息で適用する。
// pendingは「何も支払われていない」のでここでは扱わない（キャンセルはpending→refunded）。
func (u *AdminOrderUsecase) Refund(ctx context.Context, actorUserID int64, orderID int64) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, newValidationError("invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		switch o.Status {
		case model.OrderStatusPending:
			return &InvalidStateError{Message: "order is not paid yet"}
		case model.OrderStatusRefunded:
			return &InvalidStateError{Message: "order is already refunded"}
		}

		before := o.Status

		if o.Status != model.OrderStatusRefunding {
			if err := applyTransition(ctx, r, actorUserID, o, model.OrderStatusRefunding); err != nil {
				return err
			}
			o.Status = model.OrderStatusRefunding
		}

		//在庫戻しはrefundedへの遷移側で行われる
		if err := applyTransition(ctx, r, actorUserID, o, model.OrderStatusRefunded); err != nil {
			return err
		}
		o.Status = model.OrderStatusRefunded

		if err := u.writeStatusAudit(ctx, actorUserID, model.AuditActionRefundOrder, orderID, before, o.Status); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 統計: ステータス別件数、今日（サーバーローカル日）の件数、売上合計。
func (u *AdminOrderUsecase) Statistics(ctx context.Context) (OrderStatisticsOutput, error) {
	var out OrderStatisticsOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		counts, err := r.Orders().CountByStatus(ctx)
		if err != nil {
			return err
		}

		statusCounts := make(map[string]int64, len(allowedTransitions))
		for status := range allowedTransitions {
			statusCounts[string(status)] = 0
		}
		for _, c := range counts {
			statusCounts[string(c.Status)] = c.Count
		}

		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		todayCount, err := r.Orders().CountCreatedSince(ctx, midnight)
		if err != nil {
			return err
		}

		revenue, err := r.Orders().SumTotalForStatuses(ctx, revenueStatuses)
		if err != nil {
			return err
		}

		out = OrderStatisticsOutput{
			StatusCounts: statusCounts,
			TodayCount:   todayCount,
			Revenue:      revenue,
		}
		return nil
	})

	if err != nil {
		return OrderStatisticsOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) writeStatusAudit(ctx context.Context, actorUserID int64, action model.AuditAction, orderID int64, before, after model.OrderStatus) error {
	return u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   fmt.Sprintf(`{"status":%q}`, before),
		AfterJSON:    fmt.Sprintf(`{"status":%q}`, after),
		CreatedAt:    time.Now(),
	})
}
