package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	chatsvc "github.com/storefrontlabs/storefront-backend/internal/chat"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

type chatRequest struct {
	Messages []chatsvc.Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

// Chat forwards the conversation to the shopping assistant model.
func Chat(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		if _, err := requireUserID(r); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		reply, err := svc.Complete(ctx, payload.Messages)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"reply": reply})
	}
}
