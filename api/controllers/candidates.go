package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/api/responses"
	"github.com/arbrepalabres/backend/api/validators"
	"github.com/arbrepalabres/backend/internal/candidates"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/internal/registration"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

const birthDateLayout = "2006-01-02"

type submitRegistrationRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     string  `json:"phone" validate:"required,max=32"`
	BirthDate string  `json:"birth_date" validate:"required"`
	FeeDocRef *string `json:"fee_doc_ref,omitempty" validate:"omitempty,max=255"`
}

// SubmitRegistration creates a candidate account with its pending fee entry.
func SubmitRegistration(svc registration.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body submitRegistrationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		birthDate, err := time.Parse(birthDateLayout, body.BirthDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "birth_date must be formatted YYYY-MM-DD"))
			return
		}

		result, err := svc.SubmitRegistration(r.Context(), registration.SubmitInput{
			FirstName: validators.SanitizeString(body.FirstName, 100),
			LastName:  validators.SanitizeString(body.LastName, 100),
			Email:     body.Email,
			Phone:     validators.SanitizeString(body.Phone, 32),
			BirthDate: birthDate,
			FeeDocRef: body.FeeDocRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"candidate":   result.Candidate,
			"transaction": result.Transaction,
		})
	}
}

// CandidateRanking lists a category's leaderboard page.
func CandidateRanking(svc candidates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := enums.ParseCategory(r.URL.Query().Get("category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListRanking(r.Context(), category, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"category":   category,
			"page":       params.Page,
			"limit":      params.Limit,
			"candidates": rows,
		})
	}
}

// GetCandidate returns one candidate account.
func GetCandidate(svc candidates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "candidateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate id"))
			return
		}

		candidate, err := svc.GetCandidate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, candidate)
	}
}

// CandidateTransactions lists a candidate's ledger history, newest first.
func CandidateTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, err := svc.ListByCandidate(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"page":         params.Page,
			"limit":        params.Limit,
			"transactions": rows,
		})
	}
}

func paginationFromQuery(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}.Normalize(), nil
}
