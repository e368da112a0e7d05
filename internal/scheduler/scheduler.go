// Package scheduler runs sync passes on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// passTimeout bounds one full pass across all targets.
const passTimeout = 15 * time.Minute

type Scheduler struct {
	interval time.Duration
	run      func(ctx context.Context) error
	logger   *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(interval time.Duration, run func(ctx context.Context) error, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		run:      run,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	for {
		s.runPass()
		select {
		case <-time.After(s.interval):
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) runPass() {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()
	if err := s.run(ctx); err != nil {
		s.logger.Error("sync pass failed", zap.Error(err))
	}
}
