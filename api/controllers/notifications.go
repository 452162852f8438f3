package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/api/responses"
	"github.com/arbrepalabres/backend/internal/notifications"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
)

// CandidateNotifications lists a candidate's notifications, newest first.
func CandidateNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "candidateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate id"))
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly := r.URL.Query().Get("unread") == "true"

		result, err := svc.List(r.Context(), notifications.ListParams{
			CandidateID: id,
			Page:        params.Page,
			Limit:       params.Limit,
			UnreadOnly:  unreadOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"page":          params.Page,
			"limit":         params.Limit,
			"unread":        result.Unread,
			"notifications": result.Items,
		})
	}
}

// MarkNotificationRead flags one notification as read. Repeating the call is harmless.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, err := uuid.Parse(chi.URLParam(r, "candidateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate id"))
			return
		}
		notificationID, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification id"))
			return
		}

		if err := svc.MarkRead(r.Context(), candidateID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"read": true})
	}
}

// MarkAllNotificationsRead clears a candidate's unread notifications.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidateID, err := uuid.Parse(chi.URLParam(r, "candidateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate id"))
			return
		}

		updated, err := svc.MarkAllRead(r.Context(), candidateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": updated})
	}
}
