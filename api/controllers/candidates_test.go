package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arbrepalabres/backend/internal/registration"
	"github.com/arbrepalabres/backend/pkg/db/models"
	"github.com/arbrepalabres/backend/pkg/enums"
	pkgerrors "github.com/arbrepalabres/backend/pkg/errors"
	"github.com/arbrepalabres/backend/pkg/logger"
	"github.com/arbrepalabres/backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type testRegistrationService struct {
	submitFn func(ctx context.Context, input registration.SubmitInput) (*registration.SubmitResult, error)
}

func (s *testRegistrationService) SubmitRegistration(ctx context.Context, input registration.SubmitInput) (*registration.SubmitResult, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return nil, nil
}

type testCandidatesService struct {
	getFn  func(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	listFn func(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error)
}

func (s *testCandidatesService) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, nil
}

func (s *testCandidatesService) ListRanking(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error) {
	if s.listFn != nil {
		return s.listFn(ctx, category, params)
	}
	return nil, nil
}

func TestSubmitRegistrationSuccess(t *testing.T) {
	var got registration.SubmitInput
	svc := &testRegistrationService{
		submitFn: func(ctx context.Context, input registration.SubmitInput) (*registration.SubmitResult, error) {
			got = input
			return &registration.SubmitResult{
				Candidate:   &models.Candidate{ID: uuid.New(), Category: enums.CategoryCollegeLycee},
				Transaction: &models.Transaction{ID: uuid.New(), Amount: 1000},
			}, nil
		},
	}

	body := `{"first_name":"Awa","last_name":"Diop","email":"awa@example.sn","phone":"+221770000001","birth_date":"2010-03-15"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	SubmitRegistration(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.FirstName != "Awa" || got.Email != "awa@example.sn" {
		t.Fatalf("unexpected input forwarded: %+v", got)
	}
	if got.BirthDate.Year() != 2010 || got.BirthDate.Month() != 3 {
		t.Fatalf("birth date not parsed: %v", got.BirthDate)
	}
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if _, ok := envelope.Data["candidate"]; !ok {
		t.Fatal("response missing candidate")
	}
	if _, ok := envelope.Data["transaction"]; !ok {
		t.Fatal("response missing transaction")
	}
}

func TestSubmitRegistrationRejectsBadBirthDate(t *testing.T) {
	body := `{"first_name":"Awa","last_name":"Diop","email":"awa@example.sn","phone":"+221770000001","birth_date":"15/03/2010"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	SubmitRegistration(&testRegistrationService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmitRegistrationRejectsUnknownFields(t *testing.T) {
	body := `{"first_name":"Awa","last_name":"Diop","email":"awa@example.sn","phone":"+221770000001","birth_date":"2010-03-15","balance":999}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	SubmitRegistration(&testRegistrationService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCandidateRankingForwardsCategoryAndPaging(t *testing.T) {
	var gotCategory enums.Category
	var gotParams pagination.Params
	svc := &testCandidatesService{
		listFn: func(ctx context.Context, category enums.Category, params pagination.Params) ([]models.Candidate, error) {
			gotCategory = category
			gotParams = params
			return []models.Candidate{{ID: uuid.New(), Wins: 3}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/ranking?category=universitaire&page=2&limit=10", nil)
	resp := httptest.NewRecorder()
	CandidateRanking(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotCategory != enums.CategoryUniversitaire {
		t.Fatalf("unexpected category %s", gotCategory)
	}
	if gotParams.Page != 2 || gotParams.Limit != 10 {
		t.Fatalf("unexpected params %+v", gotParams)
	}
}

func TestCandidateRankingRequiresValidCategory(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/ranking?category=lycee", nil)
	resp := httptest.NewRecorder()
	CandidateRanking(&testCandidatesService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetCandidateNotFound(t *testing.T) {
	svc := &testCandidatesService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "candidate not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+uuid.NewString(), nil)
	req = addRouteParam(req, "candidateId", uuid.NewString())
	resp := httptest.NewRecorder()
	GetCandidate(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetCandidateInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/candidates/not-a-uuid", nil)
	req = addRouteParam(req, "candidateId", "not-a-uuid")
	resp := httptest.NewRecorder()
	GetCandidate(&testCandidatesService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
