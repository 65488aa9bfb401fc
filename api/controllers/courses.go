package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	coursesvc "github.com/storefrontlabs/storefront-backend/internal/courses"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// MyCourses lists the courses the caller has been granted.
func MyCourses(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListUserCourses(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"courses": rows})
	}
}

type attachCourseRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// AdminAttachCourse associates a course with a product so purchases grant it.
func AdminAttachCourse(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload attachCourseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		courseID, err := parseBodyUUID(payload.CourseID, "course id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Attach(ctx, productID, courseID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"attached": true})
	}
}

// AdminDetachCourse removes a product-course association.
func AdminDetachCourse(svc coursesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "course service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		courseID, err := parseUUIDParam(r, "courseId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Detach(ctx, productID, courseID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"detached": true})
	}
}
