package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maximally-judging/internal/domain"
	pkgerrors "maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"
)

const testToken = "mx_0123456789abcdef0123456789abcdef"

func seedJudgingFixtures(store *fakeStore) {
	store.hackathons[1] = &domain.Hackathon{
		ID:          1,
		Name:        "Maximally Codefest",
		Slug:        "maximally-codefest",
		OrganizerID: "org-user",
		PrizeLadder: []string{"Grand Prize", "Runner Up"},
	}
	store.judges[10] = &domain.Judge{
		ID:          10,
		HackathonID: 1,
		Name:        "Ada",
		Email:       "ada@example.com",
		AccessToken: testToken,
	}
	store.submissions[100] = &domain.Submission{
		ID: 100, HackathonID: 1, ProjectName: "Alpha", OwnerID: "u-alpha", Status: domain.StatusSubmitted,
	}
	store.submissions[101] = &domain.Submission{
		ID: 101, HackathonID: 1, ProjectName: "Beta", OwnerID: "u-beta", Status: domain.StatusSubmitted,
	}
	store.submissions[102] = &domain.Submission{
		ID: 102, HackathonID: 1, ProjectName: "Gamma", OwnerID: "u-gamma", Status: domain.StatusDisqualified,
	}
	store.submissions[103] = &domain.Submission{
		ID: 103, HackathonID: 1, ProjectName: "Delta", OwnerID: "u-delta", Status: domain.StatusDraft,
	}
	// Submission belonging to a different hackathon.
	store.hackathons[2] = &domain.Hackathon{ID: 2, Name: "Other", OrganizerID: "someone"}
	store.submissions[200] = &domain.Submission{
		ID: 200, HackathonID: 2, ProjectName: "Foreign", OwnerID: "u-f", Status: domain.StatusSubmitted,
	}
}

func newJudgingService(store *fakeStore) *JudgingService {
	return NewJudgingService(
		store,
		&fakeSubmissionRepo{store: store},
		&fakeScoreRepo{store: store},
		store,
		nil,
		logger.NewNop(),
	)
}

func TestResolveToken_InvalidFormat(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)

	cases := []string{
		"",
		"not-a-token",
		"mx_short",
		"mx_" + strings.Repeat("G", 32),                  // non-hex
		"MX_0123456789abcdef0123456789abcdef",            // wrong prefix case
		"mx_0123456789abcdef0123456789abcdef0",           // too long
		" mx_0123456789abcdef0123456789abcdef",           // leading space
		"mx_0123456789ABCDEF0123456789ABCDEF",            // uppercase hex
	}

	for _, token := range cases {
		_, err := svc.ResolveToken(context.Background(), token)
		var tokenErr *pkgerrors.TokenError
		require.ErrorAs(t, err, &tokenErr, "token %q", token)
		assert.Equal(t, pkgerrors.TokenErrInvalidFormat, tokenErr.Kind, "token %q", token)
		assert.Equal(t, 400, tokenErr.StatusCode())
	}
}

func TestResolveToken_NotFound(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)

	_, err := svc.ResolveToken(context.Background(), "mx_"+strings.Repeat("f", 32))

	var tokenErr *pkgerrors.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, pkgerrors.TokenErrNotFound, tokenErr.Kind)
	assert.Equal(t, 404, tokenErr.StatusCode())
}

func TestResolveToken_Expired(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	past := time.Now().Add(-time.Hour)
	store.judges[10].ExpiresAt = &past
	svc := newJudgingService(store)

	_, err := svc.ResolveToken(context.Background(), testToken)

	var tokenErr *pkgerrors.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, pkgerrors.TokenErrExpired, tokenErr.Kind)
	assert.Equal(t, 401, tokenErr.StatusCode())
}

func TestResolveToken_Success(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	future := time.Now().Add(time.Hour)
	store.judges[10].ExpiresAt = &future
	svc := newJudgingService(store)

	jctx, err := svc.ResolveToken(context.Background(), testToken)

	require.NoError(t, err)
	assert.Equal(t, int64(10), jctx.Judge.ID)
	assert.Equal(t, int64(1), jctx.Hackathon.ID)
	assert.Equal(t, "Maximally Codefest", jctx.Hackathon.Name)
}

func TestResolveToken_CacheAside(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	rc := newTestRedis(t)
	svc := NewJudgingService(store, &fakeSubmissionRepo{store: store}, &fakeScoreRepo{store: store}, store, rc, logger.NewNop())

	_, err := svc.ResolveToken(context.Background(), testToken)
	require.NoError(t, err)

	// Remove the judge from storage; a second resolution must be served
	// from the cache.
	store.mu.Lock()
	delete(store.judges, 10)
	store.mu.Unlock()

	jctx, err := svc.ResolveToken(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, int64(10), jctx.Judge.ID)
}

func TestResolveToken_ExpiryCheckedOnCacheHit(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	soon := time.Now().Add(50 * time.Millisecond)
	store.judges[10].ExpiresAt = &soon
	rc := newTestRedis(t)
	svc := NewJudgingService(store, &fakeSubmissionRepo{store: store}, &fakeScoreRepo{store: store}, store, rc, logger.NewNop())

	_, err := svc.ResolveToken(context.Background(), testToken)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	_, err = svc.ResolveToken(context.Background(), testToken)
	var tokenErr *pkgerrors.TokenError
	require.ErrorAs(t, err, &tokenErr)
	assert.Equal(t, pkgerrors.TokenErrExpired, tokenErr.Kind)
}

func TestGetBoard_EligibleOnly(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	store.scores[scoreKey(10, 100)] = &domain.Score{JudgeID: 10, SubmissionID: 100, Score: 7, Notes: "solid"}
	svc := newJudgingService(store)

	board, err := svc.GetBoard(context.Background(), testToken)

	require.NoError(t, err)
	require.Len(t, board.Submissions, 2, "draft and disqualified submissions must be hidden")
	assert.Equal(t, int64(100), board.Submissions[0].ID)
	require.NotNil(t, board.Submissions[0].MyScore)
	assert.Equal(t, 7, *board.Submissions[0].MyScore)
	require.NotNil(t, board.Submissions[0].MyNotes)
	assert.Equal(t, "solid", *board.Submissions[0].MyNotes)
	assert.Nil(t, board.Submissions[1].MyScore)
}

func intPtr(v int) *int { return &v }

func TestRecordScore_UpsertOverwrites(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)
	ctx := context.Background()

	resp, err := svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 100, Score: intPtr(6), Notes: "first pass"})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Score)

	resp, err = svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 100, Score: intPtr(9), Notes: "revised"})
	require.NoError(t, err)
	assert.Equal(t, 9, resp.Score)
	assert.Equal(t, "revised", resp.Notes)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.scores, 1, "re-scoring must overwrite, not accumulate")
	assert.Equal(t, 9, store.scores[scoreKey(10, 100)].Score)
	assert.Equal(t, "revised", store.scores[scoreKey(10, 100)].Notes)
}

func TestRecordScore_ZeroIsValid(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)

	resp, err := svc.RecordScore(context.Background(), testToken, &domain.ScoreRequest{SubmissionID: 100, Score: intPtr(0)})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
}

func TestRecordScore_OutOfRange(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)
	ctx := context.Background()

	for _, bad := range []*int{nil, intPtr(-1), intPtr(11), intPtr(100)} {
		_, err := svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 100, Score: bad})
		var appErr *pkgerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, pkgerrors.ErrorTypeValidation, appErr.Type)
	}
}

func TestRecordScore_IneligibleSubmission(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	svc := newJudgingService(store)
	ctx := context.Background()

	// Disqualified.
	_, err := svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 102, Score: intPtr(5)})
	var appErr *pkgerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.ErrorTypeValidation, appErr.Type)

	// Unknown id.
	_, err = svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 999, Score: intPtr(5)})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.ErrorTypeNotFound, appErr.Type)

	// Submission from another hackathon reads as not found.
	_, err = svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 200, Score: intPtr(5)})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.ErrorTypeNotFound, appErr.Type)
}

func TestRecordScore_InvalidatesProgressCache(t *testing.T) {
	store := newFakeStore()
	seedJudgingFixtures(store)
	rc := newTestRedis(t)
	svc := NewJudgingService(store, &fakeSubmissionRepo{store: store}, &fakeScoreRepo{store: store}, store, rc, logger.NewNop())
	ctx := context.Background()

	progressKey := rc.KeyBuilder.KeyJudgeProgress(1)
	require.NoError(t, rc.Set(ctx, progressKey, "stale", time.Minute))

	_, err := svc.RecordScore(ctx, testToken, &domain.ScoreRequest{SubmissionID: 100, Score: intPtr(8)})
	require.NoError(t, err)

	n, err := rc.Exists(ctx, progressKey)
	require.NoError(t, err)
	assert.Zero(t, n, "score writes must drop the cached progress snapshot")
}
