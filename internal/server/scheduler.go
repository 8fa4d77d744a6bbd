package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/croplore/agrihub/internal/retrieval"
)

// Scheduler triggers periodic corpus rebuilds from a cron expression. The
// core only exposes the explicit refresh; this wrapper calls it on a
// schedule, with a Redis lock so multiple replicas don't rebuild at once.
type Scheduler struct {
	Cron    string
	Refresh func(ctx context.Context) (*retrieval.Corpus, error)
	Rdb     *redis.Client
	Stop    chan struct{}
	Logger  *log.Logger

	lastRun time.Time
}

func (s *Scheduler) Start() {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	ticker := time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	now := time.Now()
	if !isDue(s.Cron, s.lastRun, now) {
		return
	}

	ctx := context.Background()
	if s.Rdb != nil {
		ok, err := s.Rdb.SetNX(ctx, rebuildLockKey, "1", rebuildLockTTL).Result()
		if err != nil || !ok {
			return
		}
		defer s.Rdb.Del(ctx, rebuildLockKey)
	}

	s.lastRun = now
	corpus, err := s.Refresh(ctx)
	if err != nil {
		s.Logger.Printf("scheduled rebuild failed, keeping previous snapshot: %v", err)
		return
	}
	s.Logger.Printf("scheduled rebuild done: %d items", corpus.Len())
}

// isDue determines whether the cron spec fires between lastRun and now.
// Supports "@daily", "@hourly", and standard 5-field cron expressions; an
// invalid expression falls back to @daily.
func isDue(cronSpec string, lastRun, now time.Time) bool {
	switch cronSpec {
	case "@daily":
		return lastRun.IsZero() || now.Sub(lastRun) >= 24*time.Hour
	case "@hourly":
		return lastRun.IsZero() || now.Sub(lastRun) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			return lastRun.IsZero() || now.Sub(lastRun) >= 24*time.Hour
		}
		if lastRun.IsZero() {
			return true
		}
		next := expr.Next(lastRun)
		return !next.After(now)
	}
}
