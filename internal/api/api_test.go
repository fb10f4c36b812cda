package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/vocabquiz/internal/api"
	"github.com/vytor/vocabquiz/internal/auth"
	"github.com/vytor/vocabquiz/internal/jobs"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/quiz"
	"github.com/vytor/vocabquiz/internal/repository/memory"
	"github.com/vytor/vocabquiz/internal/repository/sqlstore"
	"github.com/vytor/vocabquiz/internal/services"
	"github.com/vytor/vocabquiz/internal/testutil"
	"github.com/vytor/vocabquiz/internal/testutil/mocks"
	"github.com/vytor/vocabquiz/internal/worker"
)

const jwtSecret = "api-test-secret"

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type APISuite struct {
	suite.Suite
	server   *api.Server
	handler  http.Handler
	meanings map[string]string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupSuite() {
	logger.SetDefault(logger.Discard())
}

func (s *APISuite) SetupTest() {
	database := testutil.NewTestDB(s.T())

	pool := testutil.VocabPool(4)
	s.meanings = make(map[string]string, len(pool))
	for _, item := range pool {
		s.meanings[item.Word] = item.Meaning
	}
	source := new(mocks.MockCatalogSource)
	source.On("Items", mock.Anything).Return(pool, nil).Maybe()

	results := services.NewResultsService(sqlstore.NewResultRepository(database), 20)

	workers := worker.NewPool(1, 8)
	workers.Start(context.Background())
	s.T().Cleanup(workers.Stop)

	s.server = &api.Server{
		ProfileService: services.NewProfileService(sqlstore.NewProfileRepository(database)),
		QuizService: services.NewQuizService(source, memory.NewSessionRepository(), quiz.NewSeeded(3), services.QuizOptions{
			DefaultCount: 3,
			MaxCount:     10,
		}),
		ResultsService: results,
		ResultQueue:    jobs.NewWorkerQueue(workers, results),
		Verifier:       auth.NewVerifier(jwtSecret),
		DB:             database,
		CORSOrigins:    []string{"http://localhost:3000"},
	}
	s.handler = s.server.Routes()
}

func (s *APISuite) token(subject string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(jwtSecret))
	s.Require().NoError(err)
	return tok
}

func (s *APISuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body errorResponse
	s.decode(rec, &body)
	return body.Error.Code
}

// playThrough starts a quiz and answers every question, correctly when
// correct is set.
func (s *APISuite) playThrough(tok string, count int, correct bool) {
	rec := s.do(http.MethodPost, "/api/quiz", map[string]any{"count": count}, tok)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var view models.QuizView
	s.decode(rec, &view)

	for i := 0; i < count; i++ {
		s.Require().NotNil(view.Question)
		answer := "wrong"
		if correct {
			answer = s.meanings[view.Question.Word]
		}
		rec = s.do(http.MethodPost, "/api/quiz/answer", map[string]any{"index": view.Index, "answer": answer}, tok)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		if i < count-1 {
			rec = s.do(http.MethodPost, "/api/quiz/next", nil, tok)
			s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
			view = models.QuizView{}
			s.decode(rec, &view)
		}
	}
}

func (s *APISuite) TestHealthAndReady() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health", nil, "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/ready", nil, "").Code)
}

func (s *APISuite) TestQuizRequiresIdentity() {
	rec := s.do(http.MethodGet, "/api/quiz", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHORIZED", s.errorCode(rec))
}

func (s *APISuite) TestInvalidTokenRejected() {
	rec := s.do(http.MethodGet, "/api/quiz", nil, "not-a-token")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/health", nil, "not-a-token")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestWordsArePublic() {
	rec := s.do(http.MethodGet, "/api/words?difficulty=easy", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Words []models.VocabItem `json:"words"`
	}
	s.decode(rec, &body)
	s.Len(body.Words, 4)
	for _, w := range body.Words {
		s.Equal(models.DifficultyEasy, w.Difficulty)
	}

	rec = s.do(http.MethodGet, "/api/words?difficulty=extreme", nil, "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestCurrentWithoutSessionIsUninitialized() {
	rec := s.do(http.MethodGet, "/api/quiz", nil, s.token("alice"))
	s.Require().Equal(http.StatusOK, rec.Code)

	var view models.QuizView
	s.decode(rec, &view)
	s.Equal("uninitialized", view.State)
}

func (s *APISuite) TestFullQuizIsSavedAndAggregated() {
	tok := s.token("alice")
	s.playThrough(tok, 3, true)

	rec := s.do(http.MethodPost, "/api/quiz/finish", nil, tok)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var finish models.FinishResponse
	s.decode(rec, &finish)
	s.True(finish.Saved)
	s.Require().NotNil(finish.Result)
	s.Equal(3, finish.Result.Score)
	s.Equal(3, finish.Summary.Score)
	s.Equal(100.0, finish.Summary.Percentage)

	rec = s.do(http.MethodGet, "/api/stats", nil, tok)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stats models.UserStatistics
	s.decode(rec, &stats)
	s.Equal(1, stats.TotalTests)
	s.Equal(3, stats.CorrectAnswers)
	s.Equal(3, stats.BestScore)

	rec = s.do(http.MethodGet, "/api/results", nil, tok)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list struct {
		Results []models.TestResult `json:"results"`
	}
	s.decode(rec, &list)
	s.Len(list.Results, 1)

	// The session is gone after finishing.
	rec = s.do(http.MethodGet, "/api/quiz", nil, tok)
	var view models.QuizView
	s.decode(rec, &view)
	s.Equal("uninitialized", view.State)
}

func (s *APISuite) TestFinishBeforeLastAnswerIsRejected() {
	tok := s.token("bob")
	rec := s.do(http.MethodPost, "/api/quiz", map[string]any{"count": 2}, tok)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/quiz/finish", nil, tok)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))
}

func (s *APISuite) TestDetachedFinishSavesInBackground() {
	tok := s.token("carol")
	s.playThrough(tok, 2, false)

	rec := s.do(http.MethodPost, "/api/quiz/finish?detach=true", nil, tok)
	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

	var finish models.FinishResponse
	s.decode(rec, &finish)
	s.True(finish.Detached)
	s.False(finish.Saved)

	s.Eventually(func() bool {
		var stats models.UserStatistics
		rec := s.do(http.MethodGet, "/api/stats", nil, tok)
		if json.Unmarshal(rec.Body.Bytes(), &stats) != nil {
			return false
		}
		return stats.TotalTests == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *APISuite) TestAnswerValidation() {
	tok := s.token("dave")
	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/quiz", nil, tok).Code)

	rec := s.do(http.MethodPost, "/api/quiz/answer", map[string]any{"answer": "x"}, tok)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/api/quiz/answer", map[string]any{"index": 99, "answer": "x"}, tok)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/quiz", map[string]any{"count": 11}, tok)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestAnswerWithoutSessionIsNotFound() {
	rec := s.do(http.MethodPost, "/api/quiz/answer", map[string]any{"index": 0, "answer": "x"}, s.token("erin"))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestResetHistory() {
	tok := s.token("frank")
	s.playThrough(tok, 1, true)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/quiz/finish", nil, tok).Code)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/history", nil, tok).Code)

	var stats models.UserStatistics
	s.decode(s.do(http.MethodGet, "/api/stats", nil, tok), &stats)
	s.Zero(stats.TotalTests)
	s.Zero(stats.BestScore)
}

func (s *APISuite) TestProfileCookieFlow() {
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"username": "grace"}, "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)

	var profile models.Profile
	s.decode(rec, &profile)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	s.Require().Equal(http.StatusOK, out.Code)
	var stats models.UserStatistics
	s.decode(out, &stats)
	s.Equal(profile.ID, stats.UserID)

	req = httptest.NewRequest(http.MethodPost, "/profiles/"+jsonNumber(profile.ID)+"/delete", nil)
	req.AddCookie(cookies[0])
	out = httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	s.Equal(http.StatusNoContent, out.Code)
	s.Require().NotEmpty(out.Result().Cookies())
	s.Equal(-1, out.Result().Cookies()[0].MaxAge)
}

func (s *APISuite) withCookie(method, path string, id int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: "profile_id", Value: jsonNumber(id)})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) TestTokenProfileUnreachableWithoutToken() {
	tok := s.token("alice")
	s.playThrough(tok, 1, true)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/quiz/finish", nil, tok).Code)

	var owner models.UserStatistics
	s.decode(s.do(http.MethodGet, "/api/stats", nil, tok), &owner)
	s.Require().Equal(1, owner.TotalTests)

	// Claiming the subject as a local username yields a different profile.
	rec := s.do(http.MethodPost, "/profiles", map[string]any{"username": "alice"}, "")
	s.Require().Equal(http.StatusCreated, rec.Code)
	var local models.Profile
	s.decode(rec, &local)
	s.NotEqual(owner.UserID, local.ID)

	// A hand-made cookie naming the token-bound profile is dropped.
	rec = s.withCookie(http.MethodDelete, "/api/history", owner.UserID)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Require().NotEmpty(rec.Result().Cookies())
	s.Equal(-1, rec.Result().Cookies()[0].MaxAge)

	rec = s.do(http.MethodPost, "/profiles/"+jsonNumber(owner.UserID)+"/select", nil, "")
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.errorCode(rec))

	rec = s.do(http.MethodPost, "/profiles/"+jsonNumber(owner.UserID)+"/delete", nil, "")
	s.Equal(http.StatusForbidden, rec.Code)

	var list struct {
		Profiles []models.Profile `json:"profiles"`
	}
	s.decode(s.do(http.MethodGet, "/profiles", nil, ""), &list)
	for _, p := range list.Profiles {
		s.NotEqual(owner.UserID, p.ID)
	}

	var after models.UserStatistics
	s.decode(s.do(http.MethodGet, "/api/stats", nil, tok), &after)
	s.Equal(1, after.TotalTests)
}

func (s *APISuite) TestUnknownProfileCookieIsCleared() {
	req := httptest.NewRequest(http.MethodGet, "/api/quiz", nil)
	req.AddCookie(&http.Cookie{Name: "profile_id", Value: "404"})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Require().NotEmpty(rec.Result().Cookies())
	s.Equal(-1, rec.Result().Cookies()[0].MaxAge)
}

func (s *APISuite) TestFailedSaveStillClosesSession() {
	queue := new(mocks.MockResultQueue)
	queue.On("EnqueueResult", mock.Anything, mock.Anything, mock.Anything).
		Return(jobs.Resolved(nil, stderrors.New("disk full")), nil)
	s.server.ResultQueue = queue
	s.handler = s.server.Routes()

	tok := s.token("heidi")
	s.playThrough(tok, 1, true)

	rec := s.do(http.MethodPost, "/api/quiz/finish", nil, tok)
	s.Require().Equal(http.StatusOK, rec.Code)
	var finish models.FinishResponse
	s.decode(rec, &finish)
	s.False(finish.Saved)
	s.Equal(1, finish.Summary.Score)

	var view models.QuizView
	s.decode(s.do(http.MethodGet, "/api/quiz", nil, tok), &view)
	s.Equal("uninitialized", view.State)
	queue.AssertExpectations(s.T())
}

func (s *APISuite) TestQueueUnavailable() {
	queue := new(mocks.MockResultQueue)
	queue.On("EnqueueResult", mock.Anything, mock.Anything, mock.Anything).Return(nil, worker.ErrPoolStopped)
	s.server.ResultQueue = queue
	s.handler = s.server.Routes()

	tok := s.token("ivan")
	s.playThrough(tok, 1, false)

	rec := s.do(http.MethodPost, "/api/quiz/finish", nil, tok)
	s.Require().Equal(http.StatusOK, rec.Code)
	var finish models.FinishResponse
	s.decode(rec, &finish)
	s.False(finish.Saved)
	s.False(finish.Detached)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
