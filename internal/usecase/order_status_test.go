package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCanTransition(t *testing.T) {
	all := []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusPaid,
		model.OrderStatusShipped,
		model.OrderStatusCompleted,
		model.OrderStatusRefunding,
		model.OrderStatusRefunded,
	}

	allowed := map[model.OrderStatus][]model.OrderStatus{
		model.OrderStatusPending:   {model.OrderStatusPaid, model.OrderStatusRefunded},
		model.OrderStatusPaid:      {model.OrderStatusShipped, model.OrderStatusRefunding},
		model.OrderStatusShipped:   {model.OrderStatusCompleted, model.OrderStatusRefunding},
		model.OrderStatusCompleted: {model.OrderStatusRefunding},
		model.OrderStatusRefunding: {model.OrderStatusRefunded},
		model.OrderStatusRefunded:  {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range allowed[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, usecase.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := usecase.ParseOrderStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, model.OrderStatusPaid, s)

	_, ok = usecase.ParseOrderStatus("PAID")
	assert.False(t, ok)

	_, ok = usecase.ParseOrderStatus("cancelled")
	assert.False(t, ok)
}

func TestUpdateMyStatus_PendingToPaid(t *testing.T) {
	rs, tx := newRepoSet()
	uc := usecase.NewOrderUsecase(tx)
	ctx := context.Background()

	order := model.Order{ID: 10, UserID: 42, Status: model.OrderStatusPending, TotalPrice: decimal.NewFromInt(40)}
	rs.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)
	rs.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusPaid).Return(nil)
	rs.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)

	out, err := uc.UpdateMyStatus(ctx, 42, 10, "paid")

	assert.NoError(t, err)
	assert.Equal(t, "paid", out.Status)
	rs.inventory.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateMyStatus_IllegalTransition(t *testing.T) {
	rs, tx := newRepoSet()
	uc := usecase.NewOrderUsecase(tx)
	ctx := context.Background()

	order := model.Order{ID: 10, UserID: 42, Status: model.OrderStatusCompleted}
	rs.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)

	_, err := uc.UpdateMyStatus(ctx, 42, 10, "paid")

	var transErr *usecase.IllegalTransitionError
	assert.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.OrderStatusCompleted, transErr.From)
	assert.Equal(t, model.OrderStatusPaid, transErr.To)
	rs.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateMyStatus_CancelRestoresStock(t *testing.T) {
	rs, tx := newRepoSet()
	uc := usecase.NewOrderUsecase(tx)
	ctx := context.Background()

	// pending→refunded（支払い前キャンセル）で明細分の在庫が戻り、調整履歴も残る
	order := model.Order{ID: 10, UserID: 42, OrderNumber: "ORD20260101000000AAAAAA", Status: model.OrderStatusPending}
	items := []model.OrderItem{
		{OrderID: 10, ProductID: 1, ProductName: "A", Price: decimal.NewFromInt(10), Quantity: 2},
		{OrderID: 10, ProductID: 2, ProductName: "B", Price: decimal.NewFromInt(20), Quantity: 1},
	}

	rs.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)
	rs.orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return(items, nil)
	rs.inventory.On("IncreaseStock", mock.Anything, int64(1), int64(2)).Return(nil)
	rs.inventory.On("IncreaseStock", mock.Anything, int64(2), int64(1)).Return(nil)
	rs.inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(adj model.InventoryAdjustment) bool {
		return adj.ActorUserID == 42 && adj.Delta > 0 && adj.Reason == "refund ORD20260101000000AAAAAA"
	})).Return(nil)
	rs.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusRefunded).Return(nil)

	out, err := uc.UpdateMyStatus(ctx, 42, 10, "refunded")

	assert.NoError(t, err)
	assert.Equal(t, "refunded", out.Status)
	rs.inventory.AssertExpectations(t)
	rs.orders.AssertExpectations(t)
}

func TestUpdateMyStatus_RefundedIsTerminal(t *testing.T) {
	rs, tx := newRepoSet()
	uc := usecase.NewOrderUsecase(tx)
	ctx := context.Background()

	order := model.Order{ID: 10, UserID: 42, Status: model.OrderStatusRefunded}
	rs.orders.On("FindByID", mock.Anything, int64(10)).Return(order, nil)

	for _, to := range []string{"pending", "paid", "shipped", "completed", "refunding"} {
		_, err := uc.UpdateMyStatus(ctx, 42, 10, to)
		var transErr *usecase.IllegalTransitionError
		assert.ErrorAs(t, err, &transErr, "refunded -> %s", to)
	}
}

func TestUpdateMyStatus_InvalidStatusString(t *testing.T) {
	_, tx := newRepoSet()
	uc := usecase.NewOrderUsecase(tx)
	ctx := context.Background()

	_, err := uc.UpdateMyStatus(ctx, 42, 10, "delivered")

	var vErr *usecase.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
