package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 管理者の注文検索条件
type OrderListFilter struct {
	Page        int
	Limit       int
	OrderNumber string
	UserID      *int64
	Status      string
	From        *time.Time
	To          *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
}

type OrderStatusCount struct {
	Status model.OrderStatus
	Count  int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateRemark(ctx context.Context, orderID int64, remark string) error
	// 管理者の物理削除（明細も消す）
	Delete(ctx context.Context, orderID int64) error

	// 管理者用の注文一覧
	ListAdmin(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	// 統計
	CountByStatus(ctx context.Context) ([]OrderStatusCount, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	SumTotalForStatuses(ctx context.Context, statuses []model.OrderStatus) (decimal.Decimal, error)
}
