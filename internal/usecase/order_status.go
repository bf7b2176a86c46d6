package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 遷移表。pending→refundedは支払い前キャンセル。refundedは終端。
var allowedTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusPaid, model.OrderStatusRefunded},
	model.OrderStatusPaid:      {model.OrderStatusShipped, model.OrderStatusRefunding},
	model.OrderStatusShipped:   {model.OrderStatusCompleted, model.OrderStatusRefunding},
	model.OrderStatusCompleted: {model.OrderStatusRefunding},
	model.OrderStatusRefunding: {model.OrderStatusRefunded},
	model.OrderStatusRefunded:  {},
}

func ParseOrderStatus(s string) (model.OrderStatus, bool) {
	switch model.OrderStatus(s) {
	case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusShipped,
		model.OrderStatusCompleted, model.OrderStatusRefunding, model.OrderStatusRefunded:
		return model.OrderStatus(s), true
	default:
		return "", false
	}
}

func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ガードを通った遷移を永続化する。refundedに入るときだけ在庫を戻し、
// 戻した分は調整履歴にも残す。呼び出し側でWithinTxの中から使うこと。
func applyTransition(ctx context.Context, r repo.TxRepos, actorUserID int64, o model.Order, to model.OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return &IllegalTransitionError{From: o.Status, To: to}
	}

	if to == model.OrderStatusRefunded {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
			adj := model.InventoryAdjustment{
				ProductID:   it.ProductID,
				ActorUserID: actorUserID,
				Delta:       it.Quantity,
				Reason:      "refund " + o.OrderNumber,
				CreatedAt:   time.Now(),
			}
			if err := r.Inventory().CreateAdjustment(ctx, adj); err != nil {
				return err
			}
		}
	}

	return r.Orders().UpdateStatus(ctx, o.ID, to)
}
