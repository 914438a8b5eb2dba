package score_test

import (
	"context"
	"errors"
	"time"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
)

/* ───────── stubs ───────── */

type scoreWrite struct {
	ID      int64
	Score   entity.Score
	Summary string
}

type stubArticleRepo struct {
	unscored    []*entity.Article
	byID        map[int64]*entity.Article
	listErr     error
	updateErr   error
	listCalls   int
	gotLimit    int
	writes      []scoreWrite
	failWriteID int64
}

func (s *stubArticleRepo) ListUnscored(_ context.Context, limit int) ([]*entity.Article, error) {
	s.listCalls++
	s.gotLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.unscored) {
		return s.unscored[:limit], nil
	}
	return s.unscored, nil
}

func (s *stubArticleRepo) UpdateScore(_ context.Context, id int64, score entity.Score, summary string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if s.failWriteID != 0 && id == s.failWriteID {
		return errors.New("disk full")
	}
	s.writes = append(s.writes, scoreWrite{ID: id, Score: score, Summary: summary})
	return nil
}

func (s *stubArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	return s.byID[id], nil
}

func (s *stubArticleRepo) ListScored(context.Context, repository.ScoredQuery) ([]entity.ScoredArticle, error) {
	return nil, nil
}

func (s *stubArticleRepo) Stats(context.Context) (entity.Stats, error) { return entity.Stats{}, nil }

func (s *stubArticleRepo) ExistsByGUIDBatch(context.Context, []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (s *stubArticleRepo) Create(context.Context, *entity.Article) (bool, error) { return true, nil }

func (s *stubArticleRepo) DeleteFetchedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubFeedbackRepo struct {
	titles map[entity.FeedbackKind][]entity.FeedbackTitle
	limits map[entity.FeedbackKind]int
	err    error
}

func (s *stubFeedbackRepo) Add(context.Context, int64, entity.FeedbackKind) error { return nil }

func (s *stubFeedbackRepo) RecentTitles(_ context.Context, kind entity.FeedbackKind, limit int) ([]entity.FeedbackTitle, error) {
	if s.limits == nil {
		s.limits = map[entity.FeedbackKind]int{}
	}
	s.limits[kind] = limit
	if s.err != nil {
		return nil, s.err
	}
	titles := s.titles[kind]
	if limit < len(titles) {
		titles = titles[:limit]
	}
	return titles, nil
}

// scriptedScorer answers by article title found in the prompt.
type scriptedScorer struct {
	readyErr error
	answers  []scriptedAnswer
	calls    int
	prompts  []string
}

type scriptedAnswer struct {
	result *entity.ScoringResult
	err    error
}

func (s *scriptedScorer) Ready() error { return s.readyErr }

func (s *scriptedScorer) Score(_ context.Context, prompt string) (*entity.ScoringResult, error) {
	s.prompts = append(s.prompts, prompt)
	if s.calls >= len(s.answers) {
		s.calls++
		return nil, errors.New("unexpected call")
	}
	a := s.answers[s.calls]
	s.calls++
	return a.result, a.err
}

type countingPauser struct {
	count  int
	delays []time.Duration
	cancel context.CancelFunc
	after  int
}

func (p *countingPauser) Pause(ctx context.Context, d time.Duration) error {
	p.count++
	p.delays = append(p.delays, d)
	if p.cancel != nil && p.count == p.after {
		p.cancel()
	}
	return ctx.Err()
}
