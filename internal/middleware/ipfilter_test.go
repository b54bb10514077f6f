// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filtered(t *testing.T, blocklist []string, remoteAddr string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	blocked, err := ParseCIDRs(blocklist)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/projects", nil)
	c.Request.RemoteAddr = remoteAddr

	IPFilterMiddleware(blocked)(c)
	return w.Code
}

func TestIPFilterBlocksRange(t *testing.T) {
	assert.Equal(t, 403, filtered(t, []string{"192.168.1.0/24"}, "192.168.1.100:1234"))
}

func TestIPFilterAllowsOthers(t *testing.T) {
	assert.NotEqual(t, 403, filtered(t, []string{"192.168.1.0/24"}, "10.0.0.1:1234"))
}

func TestIPFilterSingleAddress(t *testing.T) {
	assert.Equal(t, 403, filtered(t, []string{"10.0.0.7"}, "10.0.0.7:1234"))
	assert.NotEqual(t, 403, filtered(t, []string{"10.0.0.7"}, "10.0.0.8:1234"))
	assert.Equal(t, 403, filtered(t, []string{"2001:db8::1"}, "[2001:db8::1]:443"))
}

func TestIPFilterEmptyBlocklist(t *testing.T) {
	assert.NotEqual(t, 403, filtered(t, nil, "garbage"))
}

func TestIPFilterUnparsableClient(t *testing.T) {
	assert.Equal(t, 403, filtered(t, []string{"10.0.0.0/8"}, "garbage"))
}

func TestParseCIDRsRejectsGarbage(t *testing.T) {
	_, err := ParseCIDRs([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseCIDRs([]string{"10.0.0.0/99"})
	assert.Error(t, err)

	nets, err := ParseCIDRs([]string{" ", "10.0.0.0/8"})
	require.NoError(t, err)
	assert.Len(t, nets, 1)
}
