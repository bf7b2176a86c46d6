package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderItemRepository interface {
	// 注文確定時の明細一括作成。価格・商品名は呼び出し側で確定済み
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error

	// 注文の明細一覧（作成順）
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
