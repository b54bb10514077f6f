// SPDX-License-Identifier: MIT
package manipulation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/smartsvg/internal/palette"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ClientOptions) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts.BaseURL = server.URL
	opts.Logger = zerolog.Nop()
	return NewClient(opts)
}

func signedToken(t *testing.T, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestPerformSendsRequest(t *testing.T) {
	var got Request
	var auth, requestID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathPerform, r.URL.Path)
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lightSvg":"<svg/>","darkSvg":"<svg/>","lightColors":[["#112233","cls-1"]],"darkColors":[[["#fff","#fff"],["#000","#000"]]],"id":7}`))
	}, ClientOptions{Tokens: StaticToken("opaque-token")})

	resp, err := client.Perform(context.Background(), Request{
		Type:         "svg",
		Element:      "<svg/>",
		Manipulation: []Manipulator{Lock([]string{"#112233"}), Invert("invertColor")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer opaque-token", auth)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, "svg", got.Type)
	require.Len(t, got.Manipulation, 2)
	assert.Equal(t, []string{"#112233"}, got.Manipulation[0].Parameters)
	assert.Equal(t, TargetAll, got.Manipulation[1].Target)

	assert.Equal(t, 7, resp.ID)
	assert.Equal(t, palette.Palette{palette.Solid("#112233", "cls-1")}, resp.LightColors)
	require.Len(t, resp.DarkColors, 1)
	assert.True(t, resp.DarkColors[0].IsGradient())
}

func TestMakeSmartOmitsMissingDark(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathMakeSmart, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"smartSvg":"<svg>smart</svg>"}`))
	}, ClientOptions{})

	resp, err := client.MakeSmart(context.Background(), SmartRequest{LightSvg: Renditions{Desktop: "<svg/>"}})
	require.NoError(t, err)
	assert.Equal(t, "<svg>smart</svg>", resp.SmartSvg)
	assert.NotContains(t, raw, "darkSvg")
	assert.NotContains(t, raw, "breakpoint")
	assert.Equal(t, map[string]any{"desktop": "<svg/>"}, raw["lightSvg"])
}

func TestExpiredTokenIsNotSent(t *testing.T) {
	called := false
	unauthorized := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, ClientOptions{
		Tokens:         StaticToken(signedToken(t, time.Now().Add(-time.Minute))),
		OnUnauthorized: func() { unauthorized++ },
	})

	_, err := client.Perform(context.Background(), Request{Type: "svg"})
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called)
	assert.Equal(t, 1, unauthorized)
}

func TestValidTokenIsSent(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"smartSvg":""}`))
	}, ClientOptions{Tokens: StaticToken(token)})

	_, err := client.MakeSmart(context.Background(), SmartRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, auth)
}

func TestUnauthorizedCallsHook(t *testing.T) {
	unauthorized := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized","errorCode":"app_errors.unauthorized"}`))
	}, ClientOptions{OnUnauthorized: func() { unauthorized++ }})

	_, err := client.Perform(context.Background(), Request{Type: "svg"})
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusUnauthorized, svcErr.Status)
	assert.Equal(t, "app_errors.unauthorized", svcErr.ErrorCode)
	assert.Equal(t, 1, unauthorized)
}

func TestServiceErrorBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantCode   string
		wantFields int
	}{
		{"empty body", http.StatusBadGateway, "", 500, "app_errors.internal_server_error", 0},
		{"garbage body", http.StatusBadRequest, "<html>", 500, "app_errors.internal_server_error", 0},
		{"validation", http.StatusBadRequest, `{"message":"Validation failed.","errorCode":"app_errors.validation_failed","errors":[{"field":"element","message":"required"}]}`, 400, "app_errors.validation_failed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, ClientOptions{})

			_, err := client.Perform(context.Background(), Request{Type: "svg"})
			var svcErr *ServiceError
			require.True(t, errors.As(err, &svcErr))
			assert.Equal(t, tt.wantStatus, svcErr.Status)
			assert.Equal(t, tt.wantCode, svcErr.ErrorCode)
			assert.Len(t, svcErr.Errors, tt.wantFields)
			assert.Equal(t, tt.wantFields > 0, svcErr.HasFieldErrors())
		})
	}
}

func TestInvalidResponseBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lightColors":{"not":"a palette"}}`))
	}, ClientOptions{})

	_, err := client.Perform(context.Background(), Request{Type: "svg"})
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "app_errors.invalid_response", svcErr.ErrorCode)
}

func TestUnreachableService(t *testing.T) {
	client := NewClient(ClientOptions{BaseURL: "http://127.0.0.1:1", Logger: zerolog.Nop()})
	_, err := client.Perform(context.Background(), Request{Type: "svg"})
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "app_errors.service_unreachable", svcErr.ErrorCode)
}

func TestMetricsRecordCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	fail := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"smartSvg":""}`))
	}, ClientOptions{Metrics: metrics})

	_, err := client.MakeSmart(context.Background(), SmartRequest{})
	require.NoError(t, err)
	fail = true
	_, err = client.MakeSmart(context.Background(), SmartRequest{})
	require.Error(t, err)

	assert.Equal(t, 1.0, callCount(t, reg, "ok"))
	// an empty error body is reported as an internal error
	assert.Equal(t, 1.0, callCount(t, reg, "500"))
}

func TestMetricsUseClientClock(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"smartSvg":""}`))
	}, ClientOptions{
		Metrics: NewMetrics(reg),
		Now: func() time.Time {
			ticks++
			if ticks == 1 {
				return base
			}
			return base.Add(2 * time.Second)
		},
	})

	_, err := client.MakeSmart(context.Background(), SmartRequest{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, family := range families {
		if family.GetName() == "smartsvg_manipulation_call_duration_seconds" {
			sum = family.GetMetric()[0].GetHistogram().GetSampleSum()
		}
	}
	assert.Equal(t, 2.0, sum)
}

func callCount(t *testing.T, reg *prometheus.Registry, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "smartsvg_manipulation_calls_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelValue(m, "status") == status && labelValue(m, "path") == PathMakeSmart {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
