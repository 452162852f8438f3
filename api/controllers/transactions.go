package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/api/middleware"
	"github.com/arbrepalabres/backend/api/responses"
	"github.com/arbrepalabres/backend/api/validators"
	"github.com/arbrepalabres/backend/internal/ledger"
	"github.com/arbrepalabres/backend/internal/withdrawals"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
)

type requestWithdrawalRequest struct {
	CandidateID     string `json:"candidate_id" validate:"required,uuid4"`
	Amount          int64  `json:"amount" validate:"required"`
	Method          string `json:"method" validate:"required"`
	AccountNumber   string `json:"account_number" validate:"required,max=64"`
	BeneficiaryName string `json:"beneficiary_name" validate:"required,max=150"`
}

// RequestWithdrawal reserves funds and opens a pending payout entry.
func RequestWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body requestWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		candidateID, err := uuid.Parse(body.CandidateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid candidate id"))
			return
		}
		method, err := enums.ParseWithdrawalMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid withdrawal method"))
			return
		}

		result, err := svc.RequestWithdrawal(r.Context(), withdrawals.RequestInput{
			CandidateID:     candidateID,
			Amount:          body.Amount,
			Method:          method,
			AccountNumber:   validators.SanitizeString(body.AccountNumber, 64),
			BeneficiaryName: validators.SanitizeString(body.BeneficiaryName, 150),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"transaction": result.Transaction,
			"new_balance": result.NewBalance,
		})
	}
}

type resolveTransactionRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=validate reject"`
	Reason   *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ResolveTransaction applies an admin decision to a pending ledger entry.
func ResolveTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}

		transactionID, err := uuid.Parse(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction id"))
			return
		}

		var body resolveTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolved, err := svc.Resolve(r.Context(), ledger.ResolveInput{
			TransactionID: transactionID,
			Decision:      ledger.Decision(body.Decision),
			Reason:        body.Reason,
			ActorID:       actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolved)
	}
}

// GetTransaction returns one ledger entry by id.
func GetTransaction(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID, err := uuid.Parse(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction id"))
			return
		}

		entry, err := svc.GetTransaction(r.Context(), transactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
