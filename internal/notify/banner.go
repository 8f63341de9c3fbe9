package notify

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"thai-travel-portal/internal/models"

	"go.uber.org/zap"
)

const (
	// CloseCountdown is how long a shown banner stays before it may be closed.
	CloseCountdown = 10 * time.Second
	// FadeDuration is the close animation before the host is notified.
	FadeDuration = 240 * time.Millisecond

	countdownTick = time.Second
)

// State is the lifecycle position of a Banner.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateScheduled
	StateShown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateScheduled:
		return "scheduled"
	case StateShown:
		return "shown"
	case StateClosed:
		return "closed"
	}
	return "idle"
}

// BannerOptions wires a Banner to its collaborators. Fetcher, Counter and
// SessionID are required.
type BannerOptions struct {
	Fetcher   Fetcher
	Counter   ViewCounter
	SessionID string
	Clock     Clock
	Rand      func() float64
	Log       *zap.Logger

	// OnClose runs after the fade-out of a close or call-to-action click.
	OnClose func()
	// OpenURL receives the call-to-action url when it is clicked.
	OpenURL func(url string)
}

// Snapshot is a read-only view of a Banner.
type Snapshot struct {
	State        State
	Notification *models.PartnerNotification
	TimeLeft     int
	CanClose     bool
	Progress     float64
}

// Banner drives one mounted notification banner. Only one delay timer and
// one countdown timer are armed at a time; every new trigger cancels the
// previous fetch and timers.
type Banner struct {
	opts BannerOptions

	mu       sync.Mutex
	gen      uint64
	mounted  bool
	visible  bool
	page     models.Page
	itemID   uint
	hasItem  bool
	state    State
	cancel   context.CancelFunc
	timer    Timer
	current  *models.PartnerNotification
	timeLeft int
	canClose bool
}

func NewBanner(opts BannerOptions) *Banner {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Banner{opts: opts}
}

// Update tells the banner which page and item it is mounted on and whether
// the host wants it visible. A new page/item, or visibility turning on,
// starts a fresh selection; visibility turning off aborts everything.
func (b *Banner) Update(page models.Page, itemID uint, hasItem, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keyChanged := !b.mounted || page != b.page || itemID != b.itemID || hasItem != b.hasItem
	wasVisible := b.visible

	b.mounted = true
	b.page, b.itemID, b.hasItem = page, itemID, hasItem
	b.visible = visible

	if !visible {
		b.resetLocked()
		return
	}
	if keyChanged || !wasVisible {
		b.triggerLocked()
	}
}

// Unmount cancels everything; the banner can be mounted again with Update.
func (b *Banner) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	b.mounted = false
	b.visible = false
}

// Close dismisses a shown banner. It is a no-op, returning false, until the
// countdown has run out.
func (b *Banner) Close() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateShown || !b.canClose {
		return false
	}
	b.beginCloseLocked()
	return true
}

// ClickCTA opens the call-to-action url and closes the banner immediately,
// regardless of the countdown.
func (b *Banner) ClickCTA() bool {
	b.mu.Lock()
	if b.state != StateShown {
		b.mu.Unlock()
		return false
	}
	url := b.current.CTAURL
	b.beginCloseLocked()
	b.mu.Unlock()

	if url != "" && b.opts.OpenURL != nil {
		b.opts.OpenURL(url)
	}
	return true
}

func (b *Banner) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{State: b.state, TimeLeft: b.timeLeft, CanClose: b.canClose}
	if b.current != nil {
		n := *b.current
		s.Notification = &n
	}
	if b.state == StateShown {
		total := int(CloseCountdown / countdownTick)
		s.Progress = float64(total-b.timeLeft) / float64(total)
	}
	return s
}

// resetLocked cancels the in-flight fetch and the armed timer and returns to
// Idle. Bumping gen invalidates every callback still in flight.
func (b *Banner) resetLocked() {
	b.gen++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.state = StateIdle
	b.current = nil
	b.timeLeft = 0
	b.canClose = false
}

func (b *Banner) triggerLocked() {
	b.resetLocked()

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.state = StateFetching
	go b.fetch(ctx, b.gen, b.page, b.itemID, b.hasItem)
}

func (b *Banner) fetch(ctx context.Context, gen uint64, page models.Page, itemID uint, hasItem bool) {
	n, err := b.opts.Fetcher.FetchRandom(ctx, page, itemID, hasItem)
	if err != nil {
		if ctx.Err() == nil {
			b.opts.Log.Debug("notification fetch failed", zap.Error(err))
		}
		b.settle(gen)
		return
	}
	if n == nil {
		b.settle(gen)
		return
	}

	views, err := b.opts.Counter.Views(ctx, b.opts.SessionID, n.ID)
	if err != nil || !ShouldShow(n, views, b.opts.Rand()) {
		b.settle(gen)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || ctx.Err() != nil {
		return
	}

	// rows written around Validate still get a sane delay
	delay := time.Duration(min(max(0, n.ShowAfterSeconds), models.MaxShowAfterSeconds)) * time.Second
	b.current = n
	b.state = StateScheduled
	b.timer = b.opts.Clock.AfterFunc(delay, func() { b.reveal(gen) })
}

// settle returns a fetch that produced nothing to Idle.
func (b *Banner) settle(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen == b.gen && b.state == StateFetching {
		b.cancel()
		b.cancel = nil
		b.state = StateIdle
	}
}

func (b *Banner) reveal(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.state != StateScheduled {
		b.mu.Unlock()
		return
	}
	if !b.visible {
		b.resetLocked()
		b.mu.Unlock()
		return
	}

	b.state = StateShown
	b.timeLeft = int(CloseCountdown / countdownTick)
	b.canClose = false
	b.timer = b.opts.Clock.AfterFunc(countdownTick, func() { b.countdown(gen) })
	id := b.current.ID
	b.mu.Unlock()

	if _, err := b.opts.Counter.Increment(context.Background(), b.opts.SessionID, id); err != nil {
		b.opts.Log.Warn("record notification view failed", zap.Uint("id", id), zap.Error(err))
	}
}

func (b *Banner) countdown(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || b.state != StateShown {
		return
	}

	b.timeLeft--
	if b.timeLeft <= 0 {
		b.timeLeft = 0
		b.canClose = true
		b.timer = nil
		return
	}
	b.timer = b.opts.Clock.AfterFunc(countdownTick, func() { b.countdown(gen) })
}

func (b *Banner) beginCloseLocked() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.state = StateClosed
	gen := b.gen
	b.timer = b.opts.Clock.AfterFunc(FadeDuration, func() { b.finishClose(gen) })
}

func (b *Banner) finishClose(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.state != StateClosed {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	b.resetLocked()
	onClose := b.opts.OnClose
	b.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}
