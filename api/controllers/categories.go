package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	categorysvc "github.com/storefrontlabs/storefront-backend/internal/categories"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// CategoriesList returns the whole taxonomy, ordered by name.
func CategoriesList(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		rows, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": rows})
	}
}

// CategoryGet returns one category.
func CategoryGet(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := parseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.Get(ctx, categoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description,omitempty"`
}

// AdminCreateCategory adds a taxonomy entry; the slug is derived server-side.
func AdminCreateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.Create(ctx, payload.Name, payload.Description)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

type updateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty"`
}

// AdminUpdateCategory renames or re-describes a taxonomy entry.
func AdminUpdateCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := parseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.Update(ctx, categoryID, payload.Name, payload.Description)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteCategory removes a taxonomy entry.
func AdminDeleteCategory(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categoryID, err := parseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, categoryID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
