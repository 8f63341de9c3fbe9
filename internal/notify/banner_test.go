package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"thai-travel-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires timers only from Advance, in due order, without holding
// its own lock while a callback runs.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
	}
}

type fetcherFunc func(ctx context.Context, page models.Page, itemID uint, hasItem bool) (*models.PartnerNotification, error)

func (f fetcherFunc) FetchRandom(ctx context.Context, page models.Page, itemID uint, hasItem bool) (*models.PartnerNotification, error) {
	return f(ctx, page, itemID, hasItem)
}

func returning(n *models.PartnerNotification) fetcherFunc {
	return func(context.Context, models.Page, uint, bool) (*models.PartnerNotification, error) {
		if n == nil {
			return nil, nil
		}
		cp := *n
		return &cp, nil
	}
}

type bannerFixture struct {
	banner  *Banner
	clock   *fakeClock
	counter *MemoryCounter
	closed  atomic.Int32
	opened  chan string
}

func newFixture(f Fetcher) *bannerFixture {
	fx := &bannerFixture{clock: &fakeClock{}, counter: NewMemoryCounter(), opened: make(chan string, 1)}
	fx.banner = NewBanner(BannerOptions{
		Fetcher:   f,
		Counter:   fx.counter,
		SessionID: "visitor",
		Clock:     fx.clock,
		Rand:      func() float64 { return 0.99 },
		OnClose:   func() { fx.closed.Add(1) },
		OpenURL:   func(u string) { fx.opened <- u },
	})
	return fx
}

func (fx *bannerFixture) waitState(t *testing.T, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return fx.banner.Snapshot().State == want
	}, time.Second, time.Millisecond, "state %s", want)
}

func (fx *bannerFixture) views(id uint) int {
	n, _ := fx.counter.Views(context.Background(), "visitor", id)
	return n
}

var hotelDeal = &models.PartnerNotification{
	ID:               1,
	Title:            "Hotel deal",
	CTAURL:           "https://partner.example.com",
	IsActive:         true,
	ShowAfterSeconds: 3,
}

func TestBanner_ShowsAfterDelayAndCountsDown(t *testing.T) {
	fx := newFixture(returning(hotelDeal))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)

	fx.clock.Advance(2 * time.Second)
	assert.Equal(t, StateScheduled, fx.banner.Snapshot().State)
	assert.Equal(t, 0, fx.views(1))

	fx.clock.Advance(time.Second)
	snap := fx.banner.Snapshot()
	require.Equal(t, StateShown, snap.State)
	assert.Equal(t, "Hotel deal", snap.Notification.Title)
	assert.Equal(t, 10, snap.TimeLeft)
	assert.False(t, snap.CanClose)
	assert.Equal(t, 0.0, snap.Progress)
	assert.Equal(t, 1, fx.views(1), "view counted exactly once on reveal")

	assert.False(t, fx.banner.Close(), "close is a no-op during the countdown")

	fx.clock.Advance(9 * time.Second)
	snap = fx.banner.Snapshot()
	assert.Equal(t, 1, snap.TimeLeft)
	assert.InDelta(t, 0.9, snap.Progress, 1e-9)
	assert.False(t, fx.banner.Close())

	fx.clock.Advance(time.Second)
	snap = fx.banner.Snapshot()
	assert.Equal(t, 0, snap.TimeLeft)
	assert.True(t, snap.CanClose)
	assert.Equal(t, 1.0, snap.Progress)

	require.True(t, fx.banner.Close())
	assert.Equal(t, StateClosed, fx.banner.Snapshot().State)
	assert.EqualValues(t, 0, fx.closed.Load(), "host notified after the fade")

	fx.clock.Advance(FadeDuration)
	assert.EqualValues(t, 1, fx.closed.Load())
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)
	assert.Equal(t, 1, fx.views(1))
}

func TestBanner_ClickCTABypassesCountdown(t *testing.T) {
	deal := *hotelDeal
	deal.ShowAfterSeconds = 0
	fx := newFixture(returning(&deal))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)
	fx.clock.Advance(0)
	require.Equal(t, StateShown, fx.banner.Snapshot().State)

	require.True(t, fx.banner.ClickCTA())
	select {
	case u := <-fx.opened:
		assert.Equal(t, "https://partner.example.com", u)
	default:
		t.Fatal("cta url was not opened")
	}
	assert.Equal(t, StateClosed, fx.banner.Snapshot().State)

	fx.clock.Advance(FadeDuration)
	assert.EqualValues(t, 1, fx.closed.Load())
	assert.False(t, fx.banner.ClickCTA(), "nothing shown any more")
}

func TestBanner_HugeDelayIsClamped(t *testing.T) {
	deal := *hotelDeal
	deal.ShowAfterSeconds = 10_000_000_000
	fx := newFixture(returning(&deal))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)

	fx.clock.Advance(time.Hour)
	assert.Equal(t, StateScheduled, fx.banner.Snapshot().State, "delay did not wrap to zero")

	fx.clock.Advance(time.Duration(models.MaxShowAfterSeconds)*time.Second - time.Hour)
	assert.Equal(t, StateShown, fx.banner.Snapshot().State)
}

func TestBanner_ContextSwitchCancelsScheduledReveal(t *testing.T) {
	fx := newFixture(fetcherFunc(func(_ context.Context, page models.Page, _ uint, _ bool) (*models.PartnerNotification, error) {
		if page == models.PageHome {
			cp := *hotelDeal
			return &cp, nil
		}
		return nil, nil
	}))

	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)

	fx.banner.Update(models.PageBlog, 0, false, true)
	fx.waitState(t, StateIdle)

	fx.clock.Advance(time.Minute)
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)
	assert.Equal(t, 0, fx.views(1), "stale banner never shown")
}

func TestBanner_RetriggerCancelsInFlightFetch(t *testing.T) {
	cancelled := make(chan struct{})
	fx := newFixture(fetcherFunc(func(ctx context.Context, page models.Page, itemID uint, _ bool) (*models.PartnerNotification, error) {
		if page == models.PageNews && itemID == 5 {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}))

	fx.banner.Update(models.PageNews, 5, true, true)
	fx.banner.Update(models.PageNews, 6, true, true)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("first fetch was not cancelled")
	}
}

func TestBanner_HidingAborts(t *testing.T) {
	fx := newFixture(returning(hotelDeal))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)

	fx.banner.Update(models.PageHome, 0, false, false)
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)

	fx.clock.Advance(time.Minute)
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)
	assert.Equal(t, 0, fx.views(1))
}

func TestBanner_UnmountAborts(t *testing.T) {
	fx := newFixture(returning(hotelDeal))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateScheduled)

	fx.banner.Unmount()
	fx.clock.Advance(time.Minute)
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)
	assert.Equal(t, 0, fx.views(1))
}

func TestBanner_FetchFailuresStayIdle(t *testing.T) {
	fx := newFixture(fetcherFunc(func(context.Context, models.Page, uint, bool) (*models.PartnerNotification, error) {
		return nil, errors.New("network down")
	}))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateIdle)
	assert.Nil(t, fx.banner.Snapshot().Notification)

	fx = newFixture(returning(nil))
	fx.banner.Update(models.PageHome, 0, false, true)
	fx.waitState(t, StateIdle)
}

func TestBanner_CapOfTwoViews(t *testing.T) {
	var calls atomic.Int32
	capped := &models.PartnerNotification{
		ID: 9, Title: "Twice", IsActive: true,
		LimitShows: true, MaxShowsPerSession: 2, ShowRandomly: false,
	}
	fx := newFixture(fetcherFunc(func(context.Context, models.Page, uint, bool) (*models.PartnerNotification, error) {
		calls.Add(1)
		cp := *capped
		return &cp, nil
	}))

	for round := 1; round <= 2; round++ {
		fx.banner.Update(models.PageHome, 0, false, true)
		fx.waitState(t, StateScheduled)
		fx.clock.Advance(0)
		require.Equal(t, StateShown, fx.banner.Snapshot().State, "round %d", round)
		assert.Equal(t, round, fx.views(9))
		fx.banner.Update(models.PageHome, 0, false, false)
	}

	fx.banner.Update(models.PageHome, 0, false, true)
	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, time.Millisecond)
	fx.waitState(t, StateIdle)
	fx.clock.Advance(time.Minute)
	assert.Equal(t, StateIdle, fx.banner.Snapshot().State)
	assert.Equal(t, 2, fx.views(9))
}

func TestBanner_SameContextDoesNotRefetch(t *testing.T) {
	var calls atomic.Int32
	fx := newFixture(fetcherFunc(func(context.Context, models.Page, uint, bool) (*models.PartnerNotification, error) {
		calls.Add(1)
		cp := *hotelDeal
		return &cp, nil
	}))

	fx.banner.Update(models.PageBlog, 2, true, true)
	fx.waitState(t, StateScheduled)
	fx.banner.Update(models.PageBlog, 2, true, true)

	assert.Equal(t, StateScheduled, fx.banner.Snapshot().State)
	assert.EqualValues(t, 1, calls.Load())
}
