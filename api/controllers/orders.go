package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	ordersvc "github.com/storefrontlabs/storefront-backend/internal/orders"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// OrdersList returns a cursor page of the caller's orders, newest first.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, next, err := svc.List(ctx, userID, cursorParam(r), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      rows,
			"next_cursor": next,
		})
	}
}

// OrderGet returns one of the caller's orders.
func OrderGet(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Get(ctx, userID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderCancel cancels a processing order.
func OrderCancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Cancel(ctx, userID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
