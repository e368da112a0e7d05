// Package app wires configuration, the feed source, marketplace targets,
// journal and notifier into runnable sync passes.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Dmitriyrevilov/seller-apis/internal/config"
	"github.com/Dmitriyrevilov/seller-apis/internal/feed"
	"github.com/Dmitriyrevilov/seller-apis/internal/journal"
	"github.com/Dmitriyrevilov/seller-apis/internal/market"
	"github.com/Dmitriyrevilov/seller-apis/internal/notify"
	"github.com/Dmitriyrevilov/seller-apis/internal/ozon"
	"github.com/Dmitriyrevilov/seller-apis/internal/scheduler"
	"github.com/Dmitriyrevilov/seller-apis/internal/syncer"
)

type App struct {
	cfg    config.Config
	logger *zap.Logger

	feed     feed.Source
	targets  []syncer.Marketplace
	syncer   *syncer.Syncer
	journal  *journal.Journal
	notifier *notify.Telegram
	sched    *scheduler.Scheduler
}

func New(cfg config.Config) (*App, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, err
	}
	jrnl, err := journal.Open(filepath.Join(cfg.DataDir, "sellersync.db"))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		feed:    feed.NewTimeworld(cfg.FeedURL, logger),
		syncer:  syncer.New(logger),
		journal: jrnl,
	}

	if cfg.OzonEnabled() {
		a.targets = append(a.targets, ozon.New(cfg.Ozon.ClientID, cfg.Ozon.APIKey, "", logger))
	}
	if cfg.FBSEnabled() || cfg.DBSEnabled() {
		mc := market.New(cfg.Market.Token, "", logger)
		if cfg.FBSEnabled() {
			a.targets = append(a.targets, mc.Campaign("market-fbs", cfg.Market.FBS.CampaignID, cfg.Market.FBS.WarehouseID))
		}
		if cfg.DBSEnabled() {
			a.targets = append(a.targets, mc.Campaign("market-dbs", cfg.Market.DBS.CampaignID, cfg.Market.DBS.WarehouseID))
		}
	}

	if cfg.NotifyEnabled() {
		notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			// The sync itself must still run when Telegram is unreachable.
			logger.Warn("notifier disabled", zap.Error(err))
		} else {
			a.notifier = notifier
		}
	}
	return a, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// RunPass fetches the feed once and syncs every enabled target in order.
// A failed target is journaled and reported, then the pass moves on to the
// next target; the joined errors are returned to the caller.
func (a *App) RunPass(ctx context.Context) error {
	records, err := a.feed.Fetch(ctx)
	if err != nil {
		a.logger.Error("feed fetch failed", zap.Error(err))
		if a.notifier != nil {
			a.notifier.Send("Sync pass aborted: " + err.Error())
		}
		return err
	}

	var (
		runs []journal.Run
		errs []error
	)
	for _, target := range a.targets {
		rep, err := a.syncer.Sync(ctx, records, target)
		run := journal.Run{
			ID:           rep.RunID,
			Target:       rep.Target,
			StartedAt:    rep.Started,
			FinishedAt:   rep.Finished,
			Offers:       rep.Offers,
			NonEmpty:     len(rep.NonEmpty),
			Prices:       len(rep.Prices),
			StockBatches: rep.StockBatches,
			PriceBatches: rep.PriceBatches,
		}
		if err != nil {
			run.Error = err.Error()
			if run.FinishedAt.IsZero() {
				run.FinishedAt = time.Now().UTC()
			}
			errs = append(errs, err)
			a.logger.Error("target sync failed", zap.String("target", rep.Target), zap.Error(err))
		}
		if jerr := a.journal.Append(ctx, run); jerr != nil {
			a.logger.Warn("journal append failed", zap.Error(jerr))
		}
		runs = append(runs, run)
	}

	if a.notifier != nil {
		a.notifier.Send(notify.FormatReport(runs))
	}
	return errors.Join(errs...)
}

// Run executes sync passes until ctx is cancelled. With a zero interval a
// single pass is executed and its error returned.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.IntervalMinutes <= 0 {
		return a.RunPass(ctx)
	}
	a.sched = scheduler.New(time.Duration(a.cfg.IntervalMinutes)*time.Minute, a.RunPass, a.logger)
	a.sched.Start()
	<-ctx.Done()
	a.sched.Stop()
	return nil
}

// History returns the most recent journaled runs, newest first.
func (a *App) History(ctx context.Context, limit int) ([]journal.Run, error) {
	return a.journal.Recent(ctx, limit)
}

func (a *App) Close() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	_ = a.logger.Sync()
}
