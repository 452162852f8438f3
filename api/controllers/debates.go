package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/api/middleware"
	"github.com/arbrepalabres/backend/api/responses"
	"github.com/arbrepalabres/backend/api/validators"
	"github.com/arbrepalabres/backend/internal/debates"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
)

type createDebateRequest struct {
	Theme          string   `json:"theme" validate:"required,max=300"`
	Category       string   `json:"category" validate:"required"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,uuid4"`
	OrganizerID    *string  `json:"organizer_id,omitempty" validate:"omitempty,uuid4"`
	StakePerHead   int64    `json:"stake_per_head,omitempty"`
}

func (req createDebateRequest) lineup() (enums.Category, []uuid.UUID, *uuid.UUID, error) {
	category, err := enums.ParseCategory(req.Category)
	if err != nil {
		return "", nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	ids := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid participant id %q", raw)
		}
		ids = append(ids, id)
	}

	var organizerID *uuid.UUID
	if req.OrganizerID != nil {
		parsed, err := uuid.Parse(*req.OrganizerID)
		if err != nil {
			return "", nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid organizer id")
		}
		organizerID = &parsed
	}
	return category, ids, organizerID, nil
}

// CreateStandardDebate opens a debate funded by registration fees.
func CreateStandardDebate(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}

		var body createDebateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, ids, organizerID, err := body.lineup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debate, err := svc.CreateStandardDebate(r.Context(), debates.CreateStandardInput{
			Theme:          validators.SanitizeString(body.Theme, 300),
			Category:       category,
			ParticipantIDs: ids,
			OrganizerID:    organizerID,
			ActorID:        actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, debate)
	}
}

// CreateChallengeDebate opens a debate funded by live stakes.
func CreateChallengeDebate(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}

		var body createDebateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, ids, organizerID, err := body.lineup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debate, err := svc.CreateChallengeDebate(r.Context(), debates.CreateChallengeInput{
			Theme:          validators.SanitizeString(body.Theme, 300),
			Category:       category,
			ParticipantIDs: ids,
			StakePerHead:   body.StakePerHead,
			OrganizerID:    organizerID,
			ActorID:        actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, debate)
	}
}

// StartDebate moves a pending debate into play.
func StartDebate(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}
		debateID, err := uuid.Parse(chi.URLParam(r, "debateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid debate id"))
			return
		}

		debate, err := svc.StartDebate(r.Context(), debateID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debate)
	}
}

type closeDebateRequest struct {
	WinnerID string `json:"winner_id" validate:"required,uuid4"`
}

// CloseDebate settles a running debate on a winner.
func CloseDebate(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}
		debateID, err := uuid.Parse(chi.URLParam(r, "debateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid debate id"))
			return
		}

		var body closeDebateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		winnerID, err := uuid.Parse(body.WinnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid winner id"))
			return
		}

		debate, err := svc.CloseDebate(r.Context(), debates.CloseInput{
			DebateID: debateID,
			WinnerID: winnerID,
			ActorID:  actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debate)
	}
}

type updateScoresRequest struct {
	Scores []scoreEntry `json:"scores" validate:"required,min=1,dive"`
}

type scoreEntry struct {
	CandidateID string `json:"candidate_id" validate:"required,uuid4"`
	Score       int    `json:"score" validate:"min=0,max=20"`
}

// UpdateScores replaces the score sheet of a running debate.
func UpdateScores(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.ActorIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Actor-Id header required"))
			return
		}
		debateID, err := uuid.Parse(chi.URLParam(r, "debateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid debate id"))
			return
		}

		var body updateScoresRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scores := make([]models.ParticipantScore, 0, len(body.Scores))
		for _, entry := range body.Scores {
			candidateID, err := uuid.Parse(entry.CandidateID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid candidate id %q", entry.CandidateID))
				return
			}
			scores = append(scores, models.ParticipantScore{CandidateID: candidateID, Score: entry.Score})
		}

		debate, err := svc.UpdateScores(r.Context(), debates.UpdateScoresInput{
			DebateID: debateID,
			Scores:   scores,
			ActorID:  actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debate)
	}
}

// GetDebate returns one debate.
func GetDebate(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		debateID, err := uuid.Parse(chi.URLParam(r, "debateId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid debate id"))
			return
		}

		debate, err := svc.GetDebate(r.Context(), debateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debate)
	}
}

// ListDebates pages through debates, optionally filtered by status.
func ListDebates(svc debates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.DebateStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseDebateStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		params, err := paginationFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListDebates(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"page":    params.Page,
			"limit":   params.Limit,
			"debates": rows,
		})
	}
}
