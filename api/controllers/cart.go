package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

func cartView(summary *cartsvc.Summary) map[string]any {
	return map[string]any{
		"items":    summary.Items,
		"subtotal": summary.Subtotal,
	}
}

// CartGet returns the caller's cart with its priced subtotal.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView(summary))
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CartAddItem adds a product to the cart, merging quantities on repeat adds.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := parseBodyUUID(payload.ProductID, "product id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.AddItem(ctx, userID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cartView(summary))
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartUpdateItem sets the quantity of an existing cart line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.UpdateItem(ctx, userID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView(summary))
	}
}

// CartRemoveItem removes one line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.RemoveItem(ctx, userID, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView(summary))
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Clear(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
