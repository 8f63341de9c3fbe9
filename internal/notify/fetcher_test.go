package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"thai-travel-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/partner-notification/random", r.URL.Path)
		assert.Equal(t, "news", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("currentItemId"))

		if c, err := r.Cookie(VisitorCookie); assert.NoError(t, err) {
			assert.Equal(t, "session_1_abc", c.Value)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"notification":{"id":4,"title":"Hotel deal","ctaUrl":"https://example.com","showAfterSeconds":2}}`))
	}))
	defer srv.Close()

	f := HTTPFetcher{BaseURL: srv.URL, VisitorID: "session_1_abc", Client: srv.Client()}
	n, err := f.FetchRandom(context.Background(), models.PageNews, 5, true)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.EqualValues(t, 4, n.ID)
	assert.Equal(t, "Hotel deal", n.Title)
	assert.Equal(t, "https://example.com", n.CTAURL)
	assert.Equal(t, 2, n.ShowAfterSeconds)
}

func TestHTTPFetcher_NothingToShow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("currentItemId"))
		_, _ = w.Write([]byte(`{"success":true,"notification":null}`))
	}))
	defer srv.Close()

	n, err := HTTPFetcher{BaseURL: srv.URL}.FetchRandom(context.Background(), models.PageHome, 0, false)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestHTTPFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := HTTPFetcher{BaseURL: srv.URL}.FetchRandom(context.Background(), models.PageHome, 0, false)
	assert.Error(t, err)
}

func TestHTTPCounter(t *testing.T) {
	views := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/partner-notification/4/view", r.URL.Path)
		if c, err := r.Cookie(VisitorCookie); assert.NoError(t, err) {
			assert.Equal(t, "session_1_abc", c.Value)
		}
		views++
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"success":true,"views":%d}`, views)
	}))
	defer srv.Close()

	ctx := context.Background()
	c := &HTTPCounter{BaseURL: srv.URL, VisitorID: "session_1_abc", Client: srv.Client()}

	n, err := c.Views(ctx, "", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = c.Increment(ctx, "", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.Increment(ctx, "session_1_abc", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Views(ctx, "", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHTTPCounter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := &HTTPCounter{BaseURL: srv.URL}
	_, err := c.Increment(context.Background(), "visitor", 9)
	assert.Error(t, err)
	n, err := c.Views(context.Background(), "visitor", 9)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBanner_OverHTTP(t *testing.T) {
	var posted atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/partner-notification/random":
			_, _ = w.Write([]byte(`{"success":true,"notification":{"id":4,"title":"Hotel deal","isActive":true,"showAfterSeconds":0}}`))
		case "/api/partner-notification/4/view":
			posted.Add(1)
			_, _ = w.Write([]byte(`{"success":true,"views":1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	clock := &fakeClock{}
	b := NewBanner(BannerOptions{
		Fetcher:   HTTPFetcher{BaseURL: srv.URL, VisitorID: "v1", Client: srv.Client()},
		Counter:   &HTTPCounter{BaseURL: srv.URL, VisitorID: "v1", Client: srv.Client()},
		SessionID: "v1",
		Clock:     clock,
		Rand:      func() float64 { return 0.99 },
	})
	b.Update(models.PageHome, 0, false, true)
	require.Eventually(t, func() bool { return b.Snapshot().State == StateScheduled }, time.Second, time.Millisecond)
	clock.Advance(0)
	require.Eventually(t, func() bool { return posted.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, StateShown, b.Snapshot().State)
}
