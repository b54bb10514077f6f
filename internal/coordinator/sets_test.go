// SPDX-License-Identifier: MIT
package coordinator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/rewrite"
	"github.com/thatcatcamp/smartsvg/internal/themes"
)

func TestEditSetKeepsFirstEditOrder(t *testing.T) {
	var e EditSet
	e.Set("#fff", "#000")
	e.Set("#f00", "#0f0")
	e.Set("#fff", "#111")

	assert.Equal(t, []rewrite.Pair{{Old: "#fff", New: "#111"}, {Old: "#f00", New: "#0f0"}}, e.Pairs())
	v, ok := e.Get("#fff")
	assert.True(t, ok)
	assert.Equal(t, "#111", v)

	c := e.Clone()
	c.Set("#00f", "#ff0")
	assert.Equal(t, 2, e.Len())
	assert.Equal(t, 3, c.Len())
}

func TestEditSetJSON(t *testing.T) {
	var e EditSet
	e.Set("#fff", "#000")
	e.Set("#f00", "#0f0")

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `[["#fff","#000"],["#f00","#0f0"]]`, string(data))

	var back EditSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, e.Pairs(), back.Pairs())

	empty, err := json.Marshal(EditSet{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestLockSetToggle(t *testing.T) {
	var l LockSet
	assert.True(t, l.Toggle("#112233"))
	assert.True(t, l.Toggle("#445566"))
	assert.False(t, l.Toggle("#112233"))
	assert.True(t, l.Toggle("#112233"))

	assert.Equal(t, []string{"#112233", "#445566"}, l.Locked())
	assert.True(t, l.IsLocked("#445566"))
	assert.Equal(t, []string{}, LockSet{}.Locked())

	data, err := json.Marshal(l)
	require.NoError(t, err)
	var back LockSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, l.Locked(), back.Locked())
}

func TestBuildRequest(t *testing.T) {
	var locks LockSet
	locks.Toggle("#112233")
	var edits EditSet
	edits.Set("#eeddcc", "#ccbbaa")

	req := BuildRequest(project.Logo{DarkTheme: themes.InvertColor, DarkThemeMobile: themes.NoInversion}, project.Desktop, "<svg/>", edits, locks)
	assert.Equal(t, "svg", req.Type)
	assert.Equal(t, "<svg/>", req.Element)
	assert.Equal(t, []manipulation.Manipulator{
		manipulation.Invert("invertColor"),
		manipulation.Lock([]string{"#112233"}),
		manipulation.EditColor("#eeddcc", "#ccbbaa"),
	}, req.Manipulation)

	req = BuildRequest(project.Favicon{}, project.Desktop, "<svg/>", EditSet{}, LockSet{})
	require.Len(t, req.Manipulation, 1)
	assert.Equal(t, manipulation.NameLock, req.Manipulation[0].Name)
	assert.Equal(t, []string{}, req.Manipulation[0].Parameters)
}
