package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/service"
	"maximally-judging/pkg/logger"
)

const testJudgeToken = "mx_0123456789abcdef0123456789abcdef"

// Stub repositories backing a real JudgingService for handler tests.

type stubHackathonRepo struct{ hackathon *domain.Hackathon }

func (s *stubHackathonRepo) GetByID(ctx context.Context, id int64) (*domain.Hackathon, error) {
	if s.hackathon != nil && s.hackathon.ID == id {
		return s.hackathon, nil
	}
	return nil, nil
}

func (s *stubHackathonRepo) IsOrganizer(ctx context.Context, hackathonID int64, userID string) (bool, error) {
	return s.hackathon != nil && s.hackathon.OrganizerID == userID, nil
}

type stubJudgeRepo struct{ judge *domain.Judge }

func (s *stubJudgeRepo) GetByToken(ctx context.Context, token string) (*domain.Judge, error) {
	if s.judge != nil && s.judge.AccessToken == token {
		return s.judge, nil
	}
	return nil, nil
}

func (s *stubJudgeRepo) ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Judge, error) {
	if s.judge == nil {
		return nil, nil
	}
	return []*domain.Judge{s.judge}, nil
}

type stubSubmissionRepo struct{ submissions []*domain.Submission }

func (s *stubSubmissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	for _, sub := range s.submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *stubSubmissionRepo) ListEligible(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	var out []*domain.Submission
	for _, sub := range s.submissions {
		if sub.HackathonID == hackathonID && sub.Eligible() {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubSubmissionRepo) ListEligibleWithScores(ctx context.Context, hackathonID, judgeID int64) ([]*domain.ScoredSubmission, error) {
	eligible, _ := s.ListEligible(ctx, hackathonID)
	out := make([]*domain.ScoredSubmission, 0, len(eligible))
	for _, sub := range eligible {
		out = append(out, &domain.ScoredSubmission{Submission: *sub})
	}
	return out, nil
}

func (s *stubSubmissionRepo) ListForModeration(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	return s.submissions, nil
}

func (s *stubSubmissionRepo) SetModeration(ctx context.Context, id int64, status domain.SubmissionStatus, feedback *string) error {
	return nil
}

type stubScoreRepo struct {
	scores   []*domain.Score
	counts   map[int64]int
	upserted []*domain.Score
}

func (s *stubScoreRepo) Upsert(ctx context.Context, score *domain.Score) error {
	score.UpdatedAt = time.Now()
	s.upserted = append(s.upserted, score)
	return nil
}

func (s *stubScoreRepo) CountByJudge(ctx context.Context, hackathonID int64) (map[int64]int, error) {
	if s.counts == nil {
		return map[int64]int{}, nil
	}
	return s.counts, nil
}

func (s *stubScoreRepo) ListForHackathon(ctx context.Context, hackathonID int64) ([]*domain.Score, error) {
	return s.scores, nil
}

func newJudgeTestRouter(t *testing.T, expiresAt *time.Time) (*chi.Mux, *stubScoreRepo) {
	t.Helper()

	hackathon := &domain.Hackathon{ID: 1, Name: "Maximally Codefest", OrganizerID: "org-user"}
	judge := &domain.Judge{ID: 10, HackathonID: 1, Name: "Ada", AccessToken: testJudgeToken, ExpiresAt: expiresAt}
	submissions := []*domain.Submission{
		{ID: 100, HackathonID: 1, ProjectName: "Alpha", OwnerID: "u-alpha", Status: domain.StatusSubmitted},
		{ID: 101, HackathonID: 1, ProjectName: "Beta", OwnerID: "u-beta", Status: domain.StatusDisqualified},
	}

	scores := &stubScoreRepo{}
	judging := service.NewJudgingService(
		&stubJudgeRepo{judge: judge},
		&stubSubmissionRepo{submissions: submissions},
		scores,
		&stubHackathonRepo{hackathon: hackathon},
		nil,
		logger.NewNop(),
	)

	r := chi.NewRouter()
	NewJudgeHandler(judging, logger.NewNop()).RegisterRoutes(r)
	return r, scores
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetSubmissions_OK(t *testing.T) {
	r, _ := newJudgeTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/judge/"+testJudgeToken+"/submissions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	subs := data["submissions"].([]interface{})
	require.Len(t, subs, 1, "disqualified submissions are hidden from judges")
	assert.Equal(t, "Maximally Codefest", data["hackathon"].(map[string]interface{})["name"])
}

func TestGetSubmissions_TokenErrors(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	cases := []struct {
		name       string
		token      string
		expiresAt  *time.Time
		wantStatus int
		wantKind   string
	}{
		{"malformed", "garbage", nil, http.StatusBadRequest, "invalid_format"},
		{"unknown", "mx_" + strings.Repeat("f", 32), nil, http.StatusNotFound, "not_found"},
		{"expired", testJudgeToken, &past, http.StatusUnauthorized, "expired"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newJudgeTestRouter(t, tc.expiresAt)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/judge/"+tc.token+"/submissions", nil))

			require.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.wantKind, body["error"])
		})
	}
}

func TestSubmitScore_OK(t *testing.T) {
	r, scores := newJudgeTestRouter(t, nil)

	payload := `{"submission_id": 100, "score": 8, "notes": "clean build"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/judge/"+testJudgeToken+"/score", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(8), data["score"])

	require.Len(t, scores.upserted, 1)
	assert.Equal(t, int64(10), scores.upserted[0].JudgeID)
	assert.Equal(t, "clean build", scores.upserted[0].Notes)
}

func TestSubmitScore_ZeroAccepted(t *testing.T) {
	r, scores := newJudgeTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/judge/"+testJudgeToken+"/score", strings.NewReader(`{"submission_id": 100, "score": 0}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, scores.upserted, 1)
	assert.Equal(t, 0, scores.upserted[0].Score)
}

func TestSubmitScore_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `{"submission_id": `},
		{"missing score", `{"submission_id": 100}`},
		{"score too high", `{"submission_id": 100, "score": 11}`},
		{"score negative", `{"submission_id": 100, "score": -1}`},
		{"missing submission", `{"score": 5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, scores := newJudgeTestRouter(t, nil)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/judge/"+testJudgeToken+"/score", strings.NewReader(tc.payload)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, scores.upserted)
		})
	}
}

func TestSubmitScore_IneligibleSubmission(t *testing.T) {
	r, scores := newJudgeTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/judge/"+testJudgeToken+"/score", strings.NewReader(`{"submission_id": 101, "score": 5}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, scores.upserted)
}
