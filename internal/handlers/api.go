// SPDX-License-Identifier: MIT
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/artifacts"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/models"
	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/projects"
	"github.com/thatcatcamp/smartsvg/internal/themes"
	"github.com/thatcatcamp/smartsvg/internal/uploads"
	"gorm.io/gorm"
)

// API serves the project endpoints
type API struct {
	db             *gorm.DB
	workspace      *Workspace
	store          artifacts.Store
	maxUploadBytes int64
	logger         zerolog.Logger
}

// APIOptions configures an API
type APIOptions struct {
	DB             *gorm.DB
	Workspace      *Workspace
	Store          artifacts.Store
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// NewAPI creates the project API
func NewAPI(opts APIOptions) *API {
	return &API{
		db:             opts.DB,
		workspace:      opts.Workspace,
		store:          opts.Store,
		maxUploadBytes: opts.MaxUploadBytes,
		logger:         opts.Logger,
	}
}

// Register mounts the API routes. limit guards the mutating routes.
func (a *API) Register(r gin.IRouter, limit ...gin.HandlerFunc) {
	r.GET("/health", HealthHandler)

	api := r.Group("/api")
	api.GET("/themes/suggestions", SuggestionsHandler)
	api.GET("/projects", a.ListProjectsHandler)
	api.GET("/projects/:id", a.GetProjectHandler)
	api.GET("/projects/:id/matches", a.MatchesHandler)
	api.GET("/projects/:id/smart", a.DownloadSmartHandler)

	mutating := api.Group("/", limit...)
	mutating.POST("/projects", a.CreateProjectHandler)
	mutating.DELETE("/projects/:id", a.DeleteProjectHandler)
	mutating.POST("/projects/:id/upload", a.UploadHandler)
	mutating.POST("/projects/:id/reset", a.ResetHandler)
	mutating.POST("/projects/:id/propagate", a.PropagateHandler)
	mutating.POST("/projects/:id/smart", a.MakeSmartHandler)
	mutating.POST("/projects/:id/devices/:device/colors", a.EditColorHandler)
	mutating.POST("/projects/:id/devices/:device/locks", a.ToggleLockHandler)
	mutating.POST("/projects/:id/devices/:device/dark-theme", a.DarkThemeHandler)
}

// log returns the request logger, falling back to the API logger
func (a *API) log(c *gin.Context) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.logger
}

// HealthHandler reports the service is up
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "smartsvg",
	})
}

// SuggestionsHandler lists the dark theme transforms
func SuggestionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": themes.ListSuggestions()})
}

// projectSummary is a project as listed
type projectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Phase     string    `json:"phase"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func summarize(record *models.Project) projectSummary {
	return projectSummary{
		ID:        record.ID,
		Name:      record.Name,
		Kind:      record.Kind,
		Phase:     record.Phase,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// deviceView is the state of one device as returned to clients
type deviceView struct {
	Light       string              `json:"light"`
	Dark        string              `json:"dark"`
	LightColors palette.Palette     `json:"lightColors"`
	DarkColors  palette.Palette     `json:"darkColors"`
	Edits       coordinator.EditSet `json:"edits"`
	Locks       coordinator.LockSet `json:"locks"`
	// dark colors too close to the dark background
	ContrastWarnings []themes.Warning `json:"contrastWarnings"`
}

// projectView is a project with its live state
type projectView struct {
	projectSummary
	Project  json.RawMessage               `json:"project"`
	Features []string                      `json:"features"`
	Devices  map[project.Device]deviceView `json:"devices"`
	Matched  []string                      `json:"matched"`
}

func (a *API) view(id string) (*projectView, error) {
	record, err := projects.GetProject(a.db, id)
	if err != nil {
		return nil, err
	}
	c, err := a.workspace.Get(id)
	if err != nil {
		return nil, err
	}
	snap := c.Snapshot()

	settings, err := project.Encode(snap.Project)
	if err != nil {
		return nil, err
	}

	v := &projectView{
		projectSummary: summarize(record),
		Project:        settings,
		Features:       snap.Project.Features(),
		Devices:        make(map[project.Device]deviceView, len(snap.Devices)),
		Matched:        snap.Matched,
	}
	v.Kind = string(snap.Project.Kind())
	v.Phase = snap.Phase.String()
	for d, st := range snap.Devices {
		warnings := themes.CheckContrast(st.DarkColors, themes.DarkBackground)
		if warnings == nil {
			warnings = []themes.Warning{}
		}
		v.Devices[d] = deviceView{
			Light:            st.Light,
			Dark:             st.Dark,
			LightColors:      st.LightColors,
			DarkColors:       st.DarkColors,
			Edits:            st.Edits,
			Locks:            st.Locks,
			ContrastWarnings: warnings,
		}
	}
	return v, nil
}

// respondView writes the current state of a project
func (a *API) respondView(c *gin.Context, status int, id string) {
	v, err := a.view(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, v)
}

// createProjectRequest carries the settings wrapped in an object keyed by
// kind, e.g. {"name": "Camp", "project": {"logo": {"darkTheme": "invertColor"}}}
type createProjectRequest struct {
	Name    string          `json:"name" binding:"required"`
	Project json.RawMessage `json:"project" binding:"required"`
}

// CreateProjectHandler creates a project
func (a *API) CreateProjectHandler(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and project are required")
		return
	}

	p, err := project.Decode(req.Project)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	record, err := projects.CreateProject(a.db, req.Name, p)
	if err != nil {
		respondError(c, err)
		return
	}

	a.log(c).Info().Str("project", record.ID).Str("kind", record.Kind).Msg("project created")
	a.respondView(c, http.StatusCreated, record.ID)
}

// ListProjectsHandler lists all projects
func (a *API) ListProjectsHandler(c *gin.Context) {
	records, err := projects.ListProjects(a.db)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]projectSummary, 0, len(records))
	for i := range records {
		out = append(out, summarize(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// GetProjectHandler returns a project and its state
func (a *API) GetProjectHandler(c *gin.Context) {
	a.respondView(c, http.StatusOK, c.Param("id"))
}

// DeleteProjectHandler deletes a project
func (a *API) DeleteProjectHandler(c *gin.Context) {
	id := c.Param("id")
	if err := projects.DeleteProject(a.db, id); err != nil {
		respondError(c, err)
		return
	}
	a.workspace.Forget(id)
	c.Status(http.StatusNoContent)
}

// UploadHandler loads new desktop and optional mobile SVGs
func (a *API) UploadHandler(c *gin.Context) {
	id := c.Param("id")
	co, err := a.workspace.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	desktopFile, err := c.FormFile("desktop")
	if err != nil {
		badRequest(c, "desktop file is required")
		return
	}
	desktop, err := uploads.ReadSVG(desktopFile, a.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	src := coordinator.Sources{Desktop: desktop}
	if mobileFile, err := c.FormFile("mobile"); err == nil {
		if responsive, _ := project.Responsive(co.Project()); !responsive {
			badRequest(c, "project has no mobile rendition")
			return
		}
		if src.Mobile, err = uploads.ReadSVG(mobileFile, a.maxUploadBytes); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := co.Load(c.Request.Context(), src); err != nil {
		respondError(c, err)
		return
	}
	a.saveAndRespond(c, id)
}

// device resolves the :device parameter
func device(c *gin.Context) (project.Device, bool) {
	d := project.Device(strings.ToLower(c.Param("device")))
	if !d.Valid() {
		badRequest(c, fmt.Sprintf("unknown device %q", c.Param("device")))
		return "", false
	}
	return d, true
}

type editColorRequest struct {
	Old string `json:"old" binding:"required"`
	New string `json:"new" binding:"required"`
}

// EditColorHandler replaces a color on one device
func (a *API) EditColorHandler(c *gin.Context) {
	d, ok := device(c)
	if !ok {
		return
	}
	var req editColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "old and new colors are required")
		return
	}
	a.mutate(c, func(co *coordinator.Coordinator) error {
		return co.EditColor(c.Request.Context(), d, req.Old, req.New)
	})
}

type lockRequest struct {
	Color string `json:"color" binding:"required"`
}

// ToggleLockHandler flips the lock of a color on one device
func (a *API) ToggleLockHandler(c *gin.Context) {
	d, ok := device(c)
	if !ok {
		return
	}
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "color is required")
		return
	}
	a.mutate(c, func(co *coordinator.Coordinator) error {
		return co.ToggleLock(c.Request.Context(), d, req.Color)
	})
}

type darkThemeRequest struct {
	Mode themes.Mode `json:"mode" binding:"required"`
}

// DarkThemeHandler selects the dark theme transform of one device
func (a *API) DarkThemeHandler(c *gin.Context) {
	d, ok := device(c)
	if !ok {
		return
	}
	var req darkThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "mode is required")
		return
	}
	a.mutate(c, func(co *coordinator.Coordinator) error {
		return co.SetDarkTheme(c.Request.Context(), d, req.Mode)
	})
}

// ResetHandler discards edits and locks, of one device when ?device= is set
func (a *API) ResetHandler(c *gin.Context) {
	var devices []project.Device
	if raw := c.Query("device"); raw != "" {
		d := project.Device(strings.ToLower(raw))
		if !d.Valid() {
			badRequest(c, fmt.Sprintf("unknown device %q", raw))
			return
		}
		devices = append(devices, d)
	}
	a.mutate(c, func(co *coordinator.Coordinator) error {
		return co.Reset(c.Request.Context(), devices...)
	})
}

// propagateRequest names the desktop dark palette before and after the
// changes to carry over. Both default to the desktop palettes as uploaded
// and as currently edited.
type propagateRequest struct {
	Original palette.Palette `json:"original"`
	Changed  palette.Palette `json:"changed"`
}

// PropagateHandler applies desktop dark palette changes to mobile
func (a *API) PropagateHandler(c *gin.Context) {
	var req propagateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid palettes: "+err.Error())
			return
		}
	}

	a.mutate(c, func(co *coordinator.Coordinator) error {
		if req.Original == nil || req.Changed == nil {
			desktop, ok := co.Snapshot().Devices[project.Desktop]
			if !ok {
				return fmt.Errorf("propagate: %w", coordinator.ErrNotLoaded)
			}
			if req.Original == nil {
				req.Original = desktop.LoadedDarkColors
			}
			if req.Changed == nil {
				req.Changed = desktop.DarkColors
			}
		}
		_, err := co.ApplyChangesToMobile(req.Original, req.Changed)
		return err
	})
}

// MatchesHandler returns the colors shared by desktop and mobile
func (a *API) MatchesHandler(c *gin.Context) {
	co, err := a.workspace.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": co.Matched()})
}

// mutate runs change against the coordinator of :id, saves the result and
// responds with the new state
func (a *API) mutate(c *gin.Context, change func(*coordinator.Coordinator) error) {
	id := c.Param("id")
	co, err := a.workspace.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := change(co); err != nil {
		respondError(c, err)
		return
	}
	a.saveAndRespond(c, id)
}

func (a *API) saveAndRespond(c *gin.Context, id string) {
	if err := a.workspace.Save(id); err != nil {
		respondError(c, err)
		return
	}
	a.respondView(c, http.StatusOK, id)
}

// MakeSmartHandler composes the smart SVG and stores it
func (a *API) MakeSmartHandler(c *gin.Context) {
	id := c.Param("id")
	co, err := a.workspace.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	svg, err := co.MakeSmart(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	key := artifacts.NewKey(id)
	if err := a.store.Put(c.Request.Context(), key, []byte(svg)); err != nil {
		respondError(c, err)
		return
	}
	artifact, err := projects.RecordArtifact(a.db, id, key, a.store.Type(), int64(len(svg)))
	if err != nil {
		respondError(c, err)
		return
	}

	a.log(c).Info().Str("project", id).Str("key", key).Int64("size", artifact.Size).Msg("smart svg stored")
	c.JSON(http.StatusCreated, gin.H{
		"id":        artifact.ID,
		"size":      artifact.Size,
		"createdAt": artifact.CreatedAt,
		"download":  fmt.Sprintf("/api/projects/%s/smart", id),
	})
}

// DownloadSmartHandler serves the latest smart SVG of a project
func (a *API) DownloadSmartHandler(c *gin.Context) {
	id := c.Param("id")
	record, err := projects.GetProject(a.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	artifact, err := projects.LatestArtifact(a.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := a.store.Get(c.Request.Context(), artifact.StorageKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadName(record.Name)))
	c.Data(http.StatusOK, uploads.SVGMediaType, data)
}

// downloadName turns a project name into a safe file name
func downloadName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "project"
	}
	return base + "-smart.svg"
}
