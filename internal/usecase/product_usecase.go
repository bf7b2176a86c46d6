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

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, inventoryRepo repo.InventoryRepository, auditRepo repo.AuditLogRepository) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

// GET /productsの入力
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type SaveProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Status      string
	Category    string
}

func (u *ProductUsecase) ListPublic(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, newValidationError("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, newValidationError("invalid q")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		Category: in.Category,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, err
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, newValidationError("invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return model.Product{}, err
	}

	//非公開は存在しない扱い
	if p.Status == model.ProductStatusInactive {
		return model.Product{}, &NotFoundError{Resource: "product", ID: id}
	}
	return p, nil
}

func (u *ProductUsecase) Create(ctx context.Context, in SaveProductInput) (model.Product, error) {
	if err := validateSaveProduct(in); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      model.ProductStatus(in.Status),
		Category:    strings.TrimSpace(in.Category),
	}
	return u.productRepo.Create(ctx, p)
}

func (u *ProductUsecase) Update(ctx context.Context, id int64, in SaveProductInput) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, newValidationError("invalid id")
	}
	if err := validateSaveProduct(in); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Status:      model.ProductStatus(in.Status),
		Category:    strings.TrimSpace(in.Category),
	}
	err := u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return model.Product{}, err
	}
	return u.productRepo.FindByID(ctx, id)
}

func (u *ProductUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return newValidationError("invalid id")
	}

	err := u.productRepo.SoftDelete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return &NotFoundError{Resource: "product", ID: id}
	}
	return err
}

// 在庫の直接設定（管理者）。差分を調整履歴に、操作を監査ログに残す。
func (u *ProductUsecase) SetStock(ctx context.Context, actorUserID int64, id int64, newStock int64, reason string) (model.Product, error) {
	if actorUserID <= 0 {
		return model.Product{}, ErrUnauthorized
	}
	if id <= 0 {
		return model.Product{}, newValidationError("invalid id")
	}
	if newStock < 0 {
		return model.Product{}, newValidationError("stock must not be negative")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual set"
	}

	//変更前の在庫（before）
	before, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return model.Product{}, err
	}

	if err := u.inventoryRepo.SetStock(ctx, id, newStock); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, &NotFoundError{Resource: "product", ID: id}
		}
		return model.Product{}, err
	}

	if err := u.inventoryRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID:   id,
		ActorUserID: actorUserID,
		Delta:       newStock - before.Stock,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}); err != nil {
		return model.Product{}, err
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   id,
		BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, before.Stock),
		AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
		CreatedAt:    time.Now(),
	}); err != nil {
		return model.Product{}, err
	}

	return u.productRepo.FindByID(ctx, id)
}

func validateSaveProduct(in SaveProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return newValidationError("name is required")
	}
	if in.Price.IsNegative() {
		return newValidationError("price must not be negative")
	}
	if in.Stock < 0 {
		return newValidationError("stock must not be negative")
	}
	switch model.ProductStatus(in.Status) {
	case model.ProductStatusActive, model.ProductStatusInactive, model.ProductStatusOutOfStock:
	default:
		return newValidationError("invalid status %q", in.Status)
	}
	return nil
}
