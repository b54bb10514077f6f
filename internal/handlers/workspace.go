// SPDX-License-Identifier: MIT
package handlers

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/projects"
	"gorm.io/gorm"
)

// workspaceEntry is a live coordinator and the lock ordering its saves
type workspaceEntry struct {
	coordinator *coordinator.Coordinator
	saveMu      sync.Mutex
}

// Workspace keeps one coordinator per open project. Coordinators are
// restored from the database on first use and written back after every
// change.
type Workspace struct {
	db     *gorm.DB
	svc    manipulation.Service
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]*workspaceEntry
}

// NewWorkspace creates an empty workspace
func NewWorkspace(db *gorm.DB, svc manipulation.Service, logger zerolog.Logger) *Workspace {
	return &Workspace{
		db:      db,
		svc:     svc,
		logger:  logger,
		entries: map[string]*workspaceEntry{},
	}
}

// Get returns the coordinator of a project, restoring it when needed
func (w *Workspace) Get(id string) (*coordinator.Coordinator, error) {
	entry, err := w.entry(id)
	if err != nil {
		return nil, err
	}
	return entry.coordinator, nil
}

func (w *Workspace) entry(id string) (*workspaceEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry, ok := w.entries[id]; ok {
		return entry, nil
	}

	snap, err := projects.LoadSnapshot(w.db, id)
	if err != nil {
		return nil, err
	}
	log := w.logger.With().Str("project", id).Logger()
	c := coordinator.New(snap.Project, coordinator.Options{
		Service:  w.svc,
		Notifier: coordinator.LogNotifier{Logger: log},
		Logger:   log,
	})
	c.Restore(snap)

	entry := &workspaceEntry{coordinator: c}
	w.entries[id] = entry
	log.Debug().Int("devices", len(snap.Devices)).Msg("project restored")
	return entry, nil
}

// Save writes the current state of a project to the database
func (w *Workspace) Save(id string) error {
	entry, err := w.entry(id)
	if err != nil {
		return err
	}
	entry.saveMu.Lock()
	defer entry.saveMu.Unlock()
	return projects.SaveSnapshot(w.db, id, entry.coordinator.Snapshot())
}

// Forget drops the coordinator of a deleted project
func (w *Workspace) Forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, id)
}
