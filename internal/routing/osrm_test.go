package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrivingDistanceKm(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":12400.0}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	km, err := client.DrivingDistanceKm(context.Background(), 39.92, 32.85, 41.01, 28.97)
	require.NoError(t, err)
	assert.Equal(t, 12.4, km)

	// Longitude before latitude, per the OSRM URL scheme.
	assert.Equal(t, "/route/v1/driving/32.850000,39.920000;28.970000,41.010000", gotPath)
	assert.Equal(t, "overview=false&alternatives=false&steps=false", gotQuery)
}

func TestDrivingDistanceKm_ZeroIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":0}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	km, err := client.DrivingDistanceKm(context.Background(), 39.92, 32.85, 39.92, 32.85)
	require.NoError(t, err)
	assert.Equal(t, 0.0, km)
}

func TestDrivingDistanceKm_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.DrivingDistanceKm(context.Background(), 39.92, 32.85, 41.01, 28.97)
	assert.ErrorIs(t, err, ErrDistanceUnavailable)
}

func TestDrivingDistanceKm_NotOkCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	_, err := client.DrivingDistanceKm(context.Background(), 39.92, 32.85, 41.01, 28.97)
	assert.ErrorIs(t, err, ErrDistanceUnavailable)
}

func TestDrivingDistanceKm_MissingDistance(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no routes", `{"code":"Ok","routes":[]}`},
		{"null distance", `{"code":"Ok","routes":[{"distance":null}]}`},
		{"malformed json", `{"code":"Ok","routes":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 0)
			_, err := client.DrivingDistanceKm(context.Background(), 39.92, 32.85, 41.01, 28.97)
			assert.ErrorIs(t, err, ErrDistanceUnavailable)
		})
	}
}

func TestDrivingDistanceKm_ContextCancelled(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.DrivingDistanceKm(ctx, 39.92, 32.85, 41.01, 28.97)
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDistanceUnavailable))
	case <-time.After(2 * time.Second):
		t.Fatal("request did not abort after context cancellation")
	}
}
