package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"maximally-judging/internal/domain"
	pkgredis "maximally-judging/pkg/redis"
)

// newTestRedis spins up a miniredis and wraps it in our client.
func newTestRedis(t *testing.T) *pkgredis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := pkgredis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// fakeStore is an in-memory implementation of every repository interface,
// shared by the service tests.
type fakeStore struct {
	mu           sync.Mutex
	hackathons   map[int64]*domain.Hackathon
	organizers   map[int64]map[string]bool
	judges       map[int64]*domain.Judge
	submissions  map[int64]*domain.Submission
	scores       map[string]*domain.Score
	winners      map[string]*domain.Winner
	achievements []*domain.Achievement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hackathons:  make(map[int64]*domain.Hackathon),
		organizers:  make(map[int64]map[string]bool),
		judges:      make(map[int64]*domain.Judge),
		submissions: make(map[int64]*domain.Submission),
		scores:      make(map[string]*domain.Score),
		winners:     make(map[string]*domain.Winner),
	}
}

func scoreKey(judgeID, submissionID int64) string {
	return fmt.Sprintf("%d:%d", judgeID, submissionID)
}

// HackathonRepository

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*domain.Hackathon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hackathons[id]; ok {
		copied := *h
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) IsOrganizer(ctx context.Context, hackathonID int64, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hackathons[hackathonID]; ok && h.OrganizerID == userID {
		return true, nil
	}
	return f.organizers[hackathonID][userID], nil
}

// JudgeRepository

func (f *fakeStore) GetByToken(ctx context.Context, token string) (*domain.Judge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.judges {
		if j.AccessToken == token {
			copied := *j
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Judge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var judges []*domain.Judge
	for _, j := range f.judges {
		if j.HackathonID == hackathonID {
			copied := *j
			judges = append(judges, &copied)
		}
	}
	sort.Slice(judges, func(i, j int) bool { return judges[i].ID < judges[j].ID })
	return judges, nil
}

// SubmissionRepository and ScoreRepository clash with the hackathon
// repository on GetByID, so they live on wrapper types around the store.

type fakeSubmissionRepo struct{ store *fakeStore }

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if s, ok := f.store.submissions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) ListEligible(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var subs []*domain.Submission
	for _, s := range f.store.submissions {
		if s.HackathonID == hackathonID && s.Status == domain.StatusSubmitted {
			copied := *s
			subs = append(subs, &copied)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (f *fakeSubmissionRepo) ListEligibleWithScores(ctx context.Context, hackathonID, judgeID int64) ([]*domain.ScoredSubmission, error) {
	eligible, _ := f.ListEligible(ctx, hackathonID)
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*domain.ScoredSubmission
	for _, s := range eligible {
		scored := &domain.ScoredSubmission{Submission: *s}
		if sc, ok := f.store.scores[scoreKey(judgeID, s.ID)]; ok {
			v := sc.Score
			n := sc.Notes
			scored.MyScore = &v
			scored.MyNotes = &n
		}
		out = append(out, scored)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListForModeration(ctx context.Context, hackathonID int64) ([]*domain.Submission, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var subs []*domain.Submission
	for _, s := range f.store.submissions {
		if s.HackathonID == hackathonID && s.Status != domain.StatusDraft {
			copied := *s
			subs = append(subs, &copied)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (f *fakeSubmissionRepo) SetModeration(ctx context.Context, id int64, status domain.SubmissionStatus, feedback *string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	s, ok := f.store.submissions[id]
	if !ok {
		return fmt.Errorf("submission %d not found", id)
	}
	s.Status = status
	s.Feedback = feedback
	s.UpdatedAt = time.Now()
	return nil
}

// ScoreRepository

type fakeScoreRepo struct{ store *fakeStore }

func (f *fakeScoreRepo) Upsert(ctx context.Context, score *domain.Score) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	score.UpdatedAt = time.Now()
	copied := *score
	f.store.scores[scoreKey(score.JudgeID, score.SubmissionID)] = &copied
	return nil
}

func (f *fakeScoreRepo) CountByJudge(ctx context.Context, hackathonID int64) (map[int64]int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	counts := make(map[int64]int)
	for _, sc := range f.store.scores {
		sub, ok := f.store.submissions[sc.SubmissionID]
		if ok && sub.HackathonID == hackathonID && sub.Status == domain.StatusSubmitted {
			counts[sc.JudgeID]++
		}
	}
	return counts, nil
}

func (f *fakeScoreRepo) ListForHackathon(ctx context.Context, hackathonID int64) ([]*domain.Score, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var scores []*domain.Score
	for _, sc := range f.store.scores {
		sub, ok := f.store.submissions[sc.SubmissionID]
		if ok && sub.HackathonID == hackathonID && sub.Status == domain.StatusSubmitted {
			copied := *sc
			scores = append(scores, &copied)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].SubmissionID != scores[j].SubmissionID {
			return scores[i].SubmissionID < scores[j].SubmissionID
		}
		return scores[i].JudgeID < scores[j].JudgeID
	})
	return scores, nil
}

// WinnerRepository

type fakeWinnerRepo struct{ store *fakeStore }

func (f *fakeWinnerRepo) GetByID(ctx context.Context, id string) (*domain.Winner, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if w, ok := f.store.winners[id]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeWinnerRepo) ListByHackathon(ctx context.Context, hackathonID int64) ([]*domain.Winner, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var winners []*domain.Winner
	for _, w := range f.store.winners {
		if w.HackathonID == hackathonID {
			copied := *w
			winners = append(winners, &copied)
		}
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].Position < winners[j].Position })
	return winners, nil
}

func (f *fakeWinnerRepo) HasApproved(ctx context.Context, hackathonID int64) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, w := range f.store.winners {
		if w.HackathonID == hackathonID && w.Status == domain.WinnerApproved {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWinnerRepo) ReplacePending(ctx context.Context, hackathonID int64, winners []*domain.Winner) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for id, w := range f.store.winners {
		if w.HackathonID == hackathonID && w.Status == domain.WinnerPending {
			delete(f.store.winners, id)
		}
	}
	now := time.Now()
	for _, w := range winners {
		w.Status = domain.WinnerPending
		w.ProposedAt = now
		copied := *w
		f.store.winners[w.ID] = &copied
	}
	return nil
}

func (f *fakeWinnerRepo) Approve(ctx context.Context, winnerID string, achievement *domain.Achievement) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	w, ok := f.store.winners[winnerID]
	if !ok {
		return false, fmt.Errorf("winner %s not found", winnerID)
	}
	if w.Status == domain.WinnerApproved {
		return false, nil
	}
	now := time.Now()
	w.Status = domain.WinnerApproved
	w.ApprovedAt = &now
	copied := *achievement
	copied.AwardedAt = now
	f.store.achievements = append(f.store.achievements, &copied)
	return true, nil
}

// fakeMailer records sent messages and can fail selected recipients.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return fmt.Errorf("delivery to %s refused", to)
	}
	m.sent = append(m.sent, to)
	return nil
}
