package repository

import (
	"context"

	"app/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算（足りなければfalse）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセル・返金）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error

	// 増減の履歴を記録
	CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error
}
