package products

import (
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// Stock failure reasons surfaced in the error details payload.
const (
	StockReasonNotFound         = "not_found"
	StockReasonTrackingDisabled = "tracking_disabled"
	StockReasonInvalidOperation = "invalid_operation"
)

// StockState is the slice of a product the stock math operates on.
type StockState struct {
	Quantity          int
	LowStockThreshold int
	TrackStock        bool
}

// StockResult is the outcome of one bounded stock mutation.
type StockResult struct {
	NewQuantity int
	IsLowStock  bool
}

// ApplyStockOp computes the next counter value for one of the bounded
// operations. Subtract and set clamp at zero; the counter never goes
// negative no matter the input.
func ApplyStockOp(state StockState, quantity int, op enums.StockOperation) (StockResult, error) {
	if !state.TrackStock {
		return StockResult{}, stockFailure(StockReasonTrackingDisabled, "stock tracking disabled for product")
	}

	var next int
	switch op {
	case enums.StockOperationAdd:
		next = state.Quantity + quantity
	case enums.StockOperationSubtract:
		next = state.Quantity - quantity
		if next < 0 {
			next = 0
		}
	case enums.StockOperationSet:
		next = quantity
		if next < 0 {
			next = 0
		}
	default:
		return StockResult{}, stockFailure(StockReasonInvalidOperation, "unknown stock operation")
	}

	return StockResult{
		NewQuantity: next,
		IsLowStock:  next <= state.LowStockThreshold,
	}, nil
}

func stockReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return ""
	}
	return details["reason"]
}

func stockFailure(reason, message string) *pkgerrors.Error {
	code := pkgerrors.CodeStateConflict
	switch reason {
	case StockReasonNotFound:
		code = pkgerrors.CodeNotFound
	case StockReasonInvalidOperation:
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, message).WithDetails(map[string]string{"reason": reason})
}
