package helper

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Schedulers owns the background jobs: the daily ticket expiry (gocron) and
// the reconciliation sweep of pending transactions (robfig/cron).
type Schedulers struct {
	daily gocron.Scheduler
	sweep *cron.Cron
}

// StartSchedulers registers expire to run every day at 00:05 in loc and
// reconcile on the reconcileSpec cron expression.
func StartSchedulers(loc *time.Location, expire func(context.Context) error, reconcileSpec string, reconcile func(context.Context) error) (*Schedulers, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 5, 0),
			),
		),
		gocron.NewTask(func() {
			runJob("expire tickets", expire)
		}),
	)
	if err != nil {
		return nil, err
	}

	sweep := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := sweep.AddFunc(reconcileSpec, func() {
		runJob("reconcile pending transactions", reconcile)
	}); err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	sweep.Start()
	logrus.WithField("reconcile_cron", reconcileSpec).Info("schedulers started (ticket expiry daily at 00:05)")
	return &Schedulers{daily: s, sweep: sweep}, nil
}

func runJob(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		logrus.WithError(err).WithField("job", name).Error("scheduled job failed")
		return
	}
	logrus.WithFields(logrus.Fields{"job": name, "took": time.Since(start).String()}).Debug("scheduled job done")
}

func (s *Schedulers) Stop() {
	if s == nil {
		return
	}
	<-s.sweep.Stop().Done()
	if err := s.daily.Shutdown(); err != nil {
		logrus.WithError(err).Warn("stop daily scheduler")
	}
	logrus.Info("schedulers stopped")
}
