// SPDX-License-Identifier: MIT
package handlers

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/projects"
	"github.com/thatcatcamp/smartsvg/internal/themes"
	"gorm.io/gorm"
)

func TestWorkspaceSharesCoordinators(t *testing.T) {
	database := setupHandlerTestDB(t)
	record, err := projects.CreateProject(database, "Icon", project.Icon{DarkTheme: themes.InvertColor})
	require.NoError(t, err)

	ws := NewWorkspace(database, manipulation.NewLocal(), zerolog.Nop())

	var wg sync.WaitGroup
	got := make([]*coordinator.Coordinator, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = ws.Get(record.ID)
		}()
	}
	wg.Wait()

	require.NotNil(t, got[0])
	for _, c := range got {
		assert.Same(t, got[0], c)
	}
	assert.Equal(t, project.Icon{DarkTheme: themes.InvertColor}, got[0].Project())

	ws.Forget(record.ID)
	again, err := ws.Get(record.ID)
	require.NoError(t, err)
	assert.NotSame(t, got[0], again)
}

func TestWorkspaceUnknownProject(t *testing.T) {
	ws := NewWorkspace(setupHandlerTestDB(t), manipulation.NewLocal(), zerolog.Nop())

	_, err := ws.Get("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, ws.Save("missing"), gorm.ErrRecordNotFound)
}
