package usecase

import (
	"errors"
	"fmt"

	"app/internal/domain/model"
)

// usecaseはHTTPを知らない。型付きエラーを返し、handler側でステータスに写す。
var (
	//400 カートが空
	ErrCartEmpty = errors.New("cart is empty")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限
	ErrForbidden = errors.New("forbidden")
)

// 400 入力不正
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// 404 対象が存在しない
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// 400 在庫不足。どの商品かをメッセージに必ず含める。
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (requested %d)", e.ProductName, e.Requested)
}

// 400 許可されない状態遷移
type IllegalTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

// 400 操作できない状態（未払い注文の返金など）
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }
