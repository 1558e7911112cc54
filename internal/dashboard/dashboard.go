// Package dashboard computes the summary numbers on the two role
// dashboards by combining backend calls with the optimistic counters held
// in the session.
package dashboard

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/internal/session"
)

// API is the slice of the backend client the aggregators consume.
type API interface {
	Opportunities(ctx context.Context) ([]models.Opportunity, error)
	MyOpportunities(ctx context.Context, token string) ([]models.Opportunity, error)
	OpportunityApplications(ctx context.Context, token string, id int64) ([]models.Application, error)
	MyApplications(ctx context.Context, token string) ([]models.Application, error)
	Recommend(ctx context.Context, token string) ([]models.Opportunity, error)
}

// SessionValues is the slice of the session store the aggregators consume.
type SessionValues interface {
	Read(ctx context.Context, sid, key string) (string, bool, error)
	Write(ctx context.Context, sid, key, value string) error
	ConsumeOnce(ctx context.Context, sid, key string) (string, bool, error)
}

type ProviderStats struct {
	TotalOpportunities   int
	ActiveListings       int
	ApplicationsReceived int
}

type SeekerStats struct {
	ApplicationsSent int
	Recommended      int
	NewMatches       int
}

type Aggregator struct {
	api    API
	values SessionValues
	logger *slog.Logger
	now    func() time.Time
}

func New(api API, values SessionValues, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &Aggregator{api: api, values: values, logger: logger, now: time.Now}
}

// Provider aggregates the provider dashboard. The per-opportunity
// application counts fan out concurrently; a failed count is logged and
// contributes zero instead of failing the whole dashboard.
func (a *Aggregator) Provider(ctx context.Context, token string) (ProviderStats, error) {
	ops, err := a.api.MyOpportunities(ctx, token)
	if err != nil {
		return ProviderStats{}, err
	}

	stats := ProviderStats{TotalOpportunities: len(ops)}
	for _, op := range ops {
		if op.Status == models.StatusOpen {
			stats.ActiveListings++
		}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		received int
	)
	for _, op := range ops {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			apps, err := a.api.OpportunityApplications(ctx, token, id)
			if err != nil {
				a.logger.Warn("application count failed, counting zero",
					slog.Int64("opportunity_id", id), slog.Any("err", err))
				return
			}
			mu.Lock()
			received += len(apps)
			mu.Unlock()
		}(op.ID)
	}
	wg.Wait()

	stats.ApplicationsReceived = received
	return stats, nil
}

// Seeker aggregates the seeker dashboard.
//
// ApplicationsSent is the backend count plus the locally pending delta; the
// delta is consumed exactly once, and only after the backend count arrived,
// so a failed load leaves it for the next one. The recommended count
// prefers the personalized endpoint and falls back to the public list when
// that call fails or the session has no token; the fallback runs strictly
// after the personalized attempt, so a stale result can never win. New
// matches are recommended items created after the last recorded visit, or
// all of them on the first visit. The visit timestamp is rewritten on every
// successful load.
func (a *Aggregator) Seeker(ctx context.Context, sid string, sess models.Session) (SeekerStats, error) {
	apps, err := a.api.MyApplications(ctx, sess.Token)
	if err != nil {
		return SeekerStats{}, err
	}

	stats := SeekerStats{ApplicationsSent: len(apps)}
	stats.ApplicationsSent += a.consumeDelta(ctx, sid)

	recs := a.recommended(ctx, sess)
	stats.Recommended = len(recs)
	stats.NewMatches = a.countNewMatches(ctx, sid, recs)

	if err := a.values.Write(ctx, sid, session.KeyLastVisitedSeekerDashboard, a.now().UTC().Format(time.RFC3339)); err != nil {
		// best-effort: the dashboard still renders
		a.logger.Warn("failed to record dashboard visit", slog.String("sid", sid), slog.Any("err", err))
	}

	return stats, nil
}

func (a *Aggregator) consumeDelta(ctx context.Context, sid string) int {
	raw, ok, err := a.values.ConsumeOnce(ctx, sid, session.KeyApplicationsSentDelta)
	if err != nil {
		a.logger.Warn("failed to consume applications delta", slog.String("sid", sid), slog.Any("err", err))
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		a.logger.Warn("discarding malformed applications delta", slog.String("value", raw))
		return 0
	}
	return n
}

func (a *Aggregator) recommended(ctx context.Context, sess models.Session) []models.Opportunity {
	if sess.LoggedIn() {
		recs, err := a.api.Recommend(ctx, sess.Token)
		if err == nil {
			return recs
		}
		a.logger.Warn("recommendation call failed, falling back to public list", slog.Any("err", err))
	}
	ops, err := a.api.Opportunities(ctx)
	if err != nil {
		a.logger.Warn("public list fallback failed", slog.Any("err", err))
		return nil
	}
	return ops
}

func (a *Aggregator) countNewMatches(ctx context.Context, sid string, recs []models.Opportunity) int {
	raw, ok, err := a.values.Read(ctx, sid, session.KeyLastVisitedSeekerDashboard)
	if err != nil {
		a.logger.Warn("failed to read last visit", slog.String("sid", sid), slog.Any("err", err))
		return len(recs)
	}
	if !ok {
		return len(recs)
	}
	lastVisited, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		a.logger.Warn("discarding malformed last visit timestamp", slog.String("value", raw))
		return len(recs)
	}

	count := 0
	for _, op := range recs {
		if op.CreatedAt.After(lastVisited) {
			count++
		}
	}
	return count
}
