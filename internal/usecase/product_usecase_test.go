package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type productUsecaseMocks struct {
	products  *productRepoMock
	inventory *inventoryRepoMock
	audit     *auditLogRepoMock
}

func newProductUsecase() (*productUsecaseMocks, *usecase.ProductUsecase) {
	m := &productUsecaseMocks{
		products:  new(productRepoMock),
		inventory: new(inventoryRepoMock),
		audit:     new(auditLogRepoMock),
	}
	return m, usecase.NewProductUsecase(m.products, m.inventory, m.audit)
}

func TestProductDetail_InactiveIsHidden(t *testing.T) {
	m, uc := newProductUsecase()
	ctx := context.Background()

	m.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "A", Status: model.ProductStatusInactive,
	}, nil)

	_, err := uc.Detail(ctx, 1)

	var notFound *usecase.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestProductDetail_OutOfStockIsVisible(t *testing.T) {
	m, uc := newProductUsecase()
	ctx := context.Background()

	m.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "A", Stock: 0, Status: model.ProductStatusOutOfStock,
	}, nil)

	p, err := uc.Detail(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, model.ProductStatusOutOfStock, p.Status)
}

func TestProductListPublic_Validation(t *testing.T) {
	_, uc := newProductUsecase()
	ctx := context.Background()

	var vErr *usecase.ValidationError

	_, err := uc.ListPublic(ctx, usecase.ListProductsInput{Page: 0, Limit: 10})
	assert.ErrorAs(t, err, &vErr)

	_, err = uc.ListPublic(ctx, usecase.ListProductsInput{Page: 1, Limit: 101})
	assert.ErrorAs(t, err, &vErr)
}

func TestProductCreate_Validation(t *testing.T) {
	_, uc := newProductUsecase()
	ctx := context.Background()

	var vErr *usecase.ValidationError

	_, err := uc.Create(ctx, usecase.SaveProductInput{Name: " ", Price: decimal.NewFromInt(1), Status: "active"})
	assert.ErrorAs(t, err, &vErr)

	_, err = uc.Create(ctx, usecase.SaveProductInput{Name: "A", Price: decimal.NewFromInt(-1), Status: "active"})
	assert.ErrorAs(t, err, &vErr)

	_, err = uc.Create(ctx, usecase.SaveProductInput{Name: "A", Price: decimal.NewFromInt(1), Stock: -1, Status: "active"})
	assert.ErrorAs(t, err, &vErr)

	_, err = uc.Create(ctx, usecase.SaveProductInput{Name: "A", Price: decimal.NewFromInt(1), Status: "discontinued"})
	assert.ErrorAs(t, err, &vErr)
}

func TestProductCreate_Success(t *testing.T) {
	m, uc := newProductUsecase()
	ctx := context.Background()

	m.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Product A" && p.Status == model.ProductStatusActive
	})).Return(model.Product{ID: 1, Name: "Product A", Status: model.ProductStatusActive}, nil)

	p, err := uc.Create(ctx, usecase.SaveProductInput{
		Name:   "  Product A  ",
		Price:  decimal.NewFromInt(10),
		Stock:  5,
		Status: "active",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestSetStock_RecordsAdjustmentAndAudit(t *testing.T) {
	m, uc := newProductUsecase()
	ctx := context.Background()

	// 在庫4→10。差分+6の履歴と監査ログが残る
	m.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Stock: 4, Status: model.ProductStatusActive}, nil).Once()
	m.inventory.On("SetStock", mock.Anything, int64(1), int64(10)).Return(nil)
	m.inventory.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(adj model.InventoryAdjustment) bool {
		return adj.ProductID == 1 && adj.ActorUserID == 99 && adj.Delta == 6 && adj.Reason == "restock"
	})).Return(nil)
	m.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 1 &&
			l.BeforeJSON == `{"stock":4}` &&
			l.AfterJSON == `{"stock":10}`
	})).Return(nil)
	m.products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Stock: 10, Status: model.ProductStatusActive}, nil).Once()

	p, err := uc.SetStock(ctx, 99, 1, 10, "restock")

	assert.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock)
	m.inventory.AssertExpectations(t)
	m.audit.AssertExpectations(t)
}

func TestSetStock_Validation(t *testing.T) {
	_, uc := newProductUsecase()
	ctx := context.Background()

	_, err := uc.SetStock(ctx, 0, 1, 10, "")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	var vErr *usecase.ValidationError
	_, err = uc.SetStock(ctx, 99, 1, -1, "")
	assert.ErrorAs(t, err, &vErr)
}

func TestSetStock_NotFound(t *testing.T) {
	m, uc := newProductUsecase()
	ctx := context.Background()

	m.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := uc.SetStock(ctx, 99, 99, 10, "")

	var notFound *usecase.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	m.inventory.AssertNotCalled(t, "SetStock", mock.Anything, mock.Anything, mock.Anything)
}
