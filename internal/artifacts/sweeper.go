// SPDX-License-Identifier: MIT
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/projects"
	"gorm.io/gorm"
)

// Sweeper deletes artifacts older than the retention period
type Sweeper struct {
	Store     Store
	DB        *gorm.DB
	Retention time.Duration
	Interval  time.Duration
	Logger    zerolog.Logger
	now       func() time.Time
	done      chan bool
	stopChan  chan bool
}

// NewSweeper creates a sweeper that runs hourly
func NewSweeper(store Store, db *gorm.DB, retention time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		Store:     store,
		DB:        db,
		Retention: retention,
		Interval:  time.Hour,
		Logger:    logger,
		now:       time.Now,
		done:      make(chan bool, 1),
		stopChan:  make(chan bool, 1),
	}
}

// Start runs a sweep immediately and then every Interval.
// Returns a done channel that receives once the sweeper stops.
func (s *Sweeper) Start() chan bool {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		s.sweepAndLog()
		for {
			select {
			case <-s.stopChan:
				s.done <- true
				return
			case <-ticker.C:
				s.sweepAndLog()
			}
		}
	}()

	return s.done
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	select {
	case s.stopChan <- true:
	default:
	}
}

func (s *Sweeper) sweepAndLog() {
	removed, err := s.Sweep(context.Background())
	if err != nil {
		s.Logger.Error().Err(err).Msg("artifact sweep failed")
		return
	}
	if removed > 0 {
		s.Logger.Info().Int("removed", removed).Msg("expired artifacts removed")
	}
}

// Sweep deletes every expired artifact and returns how many were removed.
// A zero retention keeps artifacts forever.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s.Retention <= 0 {
		return 0, nil
	}

	expired, err := projects.ArtifactsOlderThan(s.DB, s.now().Add(-s.Retention))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range expired {
		if a.StorageType != s.Store.Type() {
			continue
		}
		if err := s.Store.Delete(ctx, a.StorageKey); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("artifact %d: %w", a.ID, err)
		}
		if err := projects.DeleteArtifact(s.DB, a.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
