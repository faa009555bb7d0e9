package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,AccessValidator

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"talentgate/internal/consent/handler/mocks"
	"talentgate/internal/consent/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	service   *mocks.MockService
	validator *mocks.MockAccessValidator
	router    http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.validator = mocks.NewMockAccessValidator(s.ctrl)

	h := New(s.service, s.validator, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body, actor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req = req.WithContext(requestcontext.WithActorID(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestRecordConsent() {
	s.Run("stores trimmed subject and scopes", func() {
		at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		s.service.EXPECT().
			Record(gomock.Any(), "athlete-1", models.Scopes{TalentIdentification: true}, 2).
			Return(&models.Record{SubjectID: "athlete-1", RetentionYears: 2, ConsentTimestamp: at, Scopes: models.Scopes{TalentIdentification: true}}, nil)

		rec := s.do(http.MethodPost, "/consents",
			`{"subjectId":"  athlete-1 ","scopes":{"talentIdentification":true},"retentionYears":2}`, "")

		s.Equal(http.StatusCreated, rec.Code)
		var body map[string]any
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
		s.Equal("athlete-1", body["subjectId"])
		s.Equal("2027-03-01T00:00:00Z", body["expiresAt"])
	})

	s.Run("rejects missing subject", func() {
		rec := s.do(http.MethodPost, "/consents", `{"subjectId":"  ","retentionYears":1}`, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects negative retention", func() {
		rec := s.do(http.MethodPost, "/consents", `{"subjectId":"a","retentionYears":-1}`, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects unknown fields", func() {
		rec := s.do(http.MethodPost, "/consents", `{"subjectId":"a","extra":true}`, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestGetConsent() {
	s.Run("not found maps to 404", func() {
		s.service.EXPECT().Get(gomock.Any(), "ghost").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "consent not found"))

		rec := s.do(http.MethodGet, "/consents/ghost", "", "")
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("returns record", func() {
		s.service.EXPECT().Get(gomock.Any(), "athlete-1").
			Return(&models.Record{SubjectID: "athlete-1", RetentionYears: 1, ConsentTimestamp: time.Now()}, nil)

		rec := s.do(http.MethodGet, "/consents/athlete-1", "", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"expired":false`)
	})
}

func (s *HandlerSuite) TestDeleteConsent() {
	s.service.EXPECT().Delete(gomock.Any(), "athlete-1").Return(nil)
	rec := s.do(http.MethodDelete, "/consents/athlete-1", "", "")
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestValidateAccess() {
	s.Run("requires an actor", func() {
		rec := s.do(http.MethodPost, "/access/validate", `{"subjectIds":["a"],"purpose":"export"}`, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("rejects unknown purpose", func() {
		rec := s.do(http.MethodPost, "/access/validate", `{"subjectIds":["a"],"purpose":"marketing"}`, "coach-1")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("returns partition", func() {
		s.validator.EXPECT().
			Validate(gomock.Any(), "coach-1", []string{"a", "b"}, models.PurposeTalentIdentification).
			Return(&models.ValidationResult{
				Allowed: []string{"a"},
				Denied:  []string{"b"},
				Reasons: map[string]string{"b": models.ReasonNoRecord},
			})

		rec := s.do(http.MethodPost, "/access/validate",
			`{"subjectIds":["a","b"],"purpose":"talent_identification"}`, "coach-1")

		s.Equal(http.StatusOK, rec.Code)
		var result models.ValidationResult
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&result))
		s.Equal([]string{"a"}, result.Allowed)
		s.Equal(models.ReasonNoRecord, result.Reasons["b"])
	})
}

func (s *HandlerSuite) TestPurge() {
	s.service.EXPECT().PurgeExpired(gomock.Any()).Return(nil, nil)

	rec := s.do(http.MethodPost, "/admin/consents/purge", "", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"purged":[],"count":0}`, rec.Body.String())
}
