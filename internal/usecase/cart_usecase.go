package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 明細の変更とtotal再計算を同じトランザクションで行う。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// priceは現在の商品価格（カートはスナップショットを持たない）
type CartItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrUnauthorized
	}

	var out CartResponse
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out, err = recomputeCart(ctx, r, cart.ID)
		return err
	})
	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrUnauthorized
	}
	if in.ProductID <= 0 {
		return CartResponse{}, newValidationError("invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, newValidationError("invalid quantity")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}

		// 商品チェック（販売中のみ）
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: in.ProductID}
		}
		if err != nil {
			return err
		}
		if p.Status != model.ProductStatusActive {
			return newValidationError("product %q is not available", p.Name)
		}

		// カート内の既存数量＋追加分が在庫を超えないか
		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}

		var existingQty int64 = 0
		for _, it := range items {
			if it.ProductID == in.ProductID {
				existingQty = it.Quantity
				break
			}
		}

		if existingQty+in.Quantity > p.Stock {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   existingQty + in.Quantity,
			}
		}

		if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
			return err
		}

		out, err = recomputeCart(ctx, r, cart.ID)
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrUnauthorized
	}
	if cartItemID <= 0 {
		return CartResponse{}, newValidationError("invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, newValidationError("invalid quantity")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := findOwnedCartItem(ctx, r, userID, cartItemID)
		if err != nil {
			return err
		}

		p, err := r.Products().FindByID(ctx, item.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "product", ID: item.ProductID}
		}
		if err != nil {
			return err
		}

		if in.Quantity > p.Stock {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   in.Quantity,
			}
		}

		if err := r.CartItems().UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
			return err
		}

		out, err = recomputeCart(ctx, r, item.CartID)
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveCartItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, ErrUnauthorized
	}
	if cartItemID <= 0 {
		return CartResponse{}, newValidationError("invalid id")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := findOwnedCartItem(ctx, r, userID, cartItemID)
		if err != nil {
			return err
		}

		if err := r.CartItems().DeleteByID(ctx, cartItemID); err != nil {
			return err
		}

		out, err = recomputeCart(ctx, r, item.CartID)
		return err
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

func findOwnedCartItem(ctx context.Context, r repo.TxRepos, userID int64, cartItemID int64) (model.CartItem, error) {
	owned, err := r.CartItems().IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return model.CartItem{}, err
	}
	if !owned {
		return model.CartItem{}, &NotFoundError{Resource: "cart item", ID: cartItemID}
	}

	item, err := r.CartItems().FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, &NotFoundError{Resource: "cart item", ID: cartItemID}
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 現在価格でtotalを計算し直してcartへ書き戻し、レスポンスを組み立てる。
func recomputeCart(ctx context.Context, r repo.TxRepos, cartID int64) (CartResponse, error) {
	items, err := r.CartItems().ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, err
	}

	outItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			// 商品が消えた明細は表示もtotalもスキップ
			continue
		}
		if err != nil {
			return CartResponse{}, err
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(it.Quantity))
		outItems = append(outItems, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	if err := r.Carts().UpdateTotal(ctx, cartID, total); err != nil {
		return CartResponse{}, err
	}

	return CartResponse{Items: outItems, Total: total}, nil
}
