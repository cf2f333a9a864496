// Package poller maintains the console's near-real-time view of the
// active-bus set. It fetches the set from the fleet backend on a fixed
// interval and on demand, distinguishes the blocking first load from
// non-blocking background refreshes, and never discards the last known
// good data on a transient failure.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/metrics"
	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/notify"
)

// DefaultInterval is the poll period between background refreshes.
const DefaultInterval = 30 * time.Second

// DefaultFetchTimeout bounds a single fetch.
const DefaultFetchTimeout = 15 * time.Second

// DefaultTrailLength caps the per-bus position history kept across polls
// for map trails.
const DefaultTrailLength = 20

// Fetcher is the slice of the fleet backend the poller depends on.
// *fleetapi.Client satisfies it.
type Fetcher interface {
	FetchActiveBuses(ctx context.Context, params url.Values) ([]models.ActiveBus, error)
}

// Notifier receives background-refresh failure reports.
// *notify.Broadcaster satisfies it.
type Notifier interface {
	Show(message string, typ notify.Type, opts ...notify.Option) string
}

// Recorder receives the outcome of every completed poll, for the refresh
// history panel. *history.Store satisfies it.
type Recorder interface {
	RecordRefresh(at time.Time, trigger string, count int, duration time.Duration, fetchErr error) error
}

// retryableError is matched against fetch errors to decide whether the
// error surface should offer a retry action.
type retryableError interface {
	Retryable() bool
}

// State is the closed set of poller states. Stale data is carried through
// Refreshing and background failures; only a first-load failure with
// nothing to show reaches Failed.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a point-in-time copy of the poller's visible state.
//
// Err is set both in StateFailed (first load failed, no data) and in
// StateReady after a background failure (data is stale but visible, the
// error belongs in a banner). LastUpdated is zero until the first success.
type Snapshot struct {
	State       State
	Buses       []models.ActiveBus
	Err         string
	Retryable   bool
	LastUpdated time.Time
}

// Stale reports whether the snapshot is older than threshold.
func (s Snapshot) Stale(now time.Time, threshold time.Duration) bool {
	if s.LastUpdated.IsZero() {
		return true
	}
	return now.Sub(s.LastUpdated) > threshold
}

// Poll triggers, used as metrics labels and history records.
const (
	TriggerInitial  = "initial"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
	TriggerFilters  = "filters"
)

type command int

const (
	cmdRefresh command = iota
	cmdForceRefresh
	cmdPause
	cmdResume
)

// Config carries the optional knobs of a Poller.
type Config struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	TrailLength  int
}

// Poller polls the fleet backend for the active-bus set. Create with New,
// call Start once, and Stop when the owning process shuts down.
type Poller struct {
	fetcher  Fetcher
	clock    clock.Clock
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier Notifier
	recorder Recorder

	interval     time.Duration
	fetchTimeout time.Duration
	trailLength  int

	mu          sync.RWMutex
	state       State
	buses       []models.ActiveBus
	lastErr     string
	retryable   bool
	lastUpdated time.Time
	params      url.Values
	trails      map[string][]models.LatLng
	paused      bool

	// in-flight bookkeeping: responses apply in request-issue order, so a
	// slow early response can never clobber a faster later one.
	inFlight    bool
	issuedGen   uint64
	appliedGen  uint64
	cancelFetch context.CancelFunc

	controlCh    chan command
	shutdownChan chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// New creates a Poller. fetcher and clk are required; logger, m, notifier
// and recorder may be nil.
func New(fetcher Fetcher, clk clock.Clock, logger *slog.Logger, cfg Config) *Poller {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = DefaultTrailLength
	}

	return &Poller{
		fetcher:      fetcher,
		clock:        clk,
		logger:       logger.With(slog.String("component", "active_bus_poller")),
		interval:     cfg.Interval,
		fetchTimeout: cfg.FetchTimeout,
		trailLength:  cfg.TrailLength,
		state:        StateIdle,
		trails:       make(map[string][]models.LatLng),
		controlCh:    make(chan command),
		shutdownChan: make(chan struct{}),
	}
}

// WithMetrics attaches a metrics sink. Call before Start.
func (p *Poller) WithMetrics(m *metrics.Metrics) *Poller {
	p.metrics = m
	return p
}

// WithNotifier attaches the notification broadcaster that receives
// background-refresh failure banners. Call before Start.
func (p *Poller) WithNotifier(n Notifier) *Poller {
	p.notifier = n
	return p
}

// WithRecorder attaches the refresh history recorder. Call before Start.
func (p *Poller) WithRecorder(r Recorder) *Poller {
	p.recorder = r
	return p
}

// Start launches the poll loop: an immediate first load, then a fetch per
// interval tick until Stop or ctx cancellation.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	p.beginFetch(ctx, TriggerInitial, false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	tickCh := ticker.C

	for {
		select {
		case <-ctx.Done():
			logging.LogOperation(p.logger, "poll_loop_stopped", slog.String("reason", "context"))
			return

		case <-p.shutdownChan:
			logging.LogOperation(p.logger, "poll_loop_stopped", slog.String("reason", "shutdown"))
			return

		case <-tickCh:
			p.beginFetch(ctx, TriggerInterval, false)

		case cmd := <-p.controlCh:
			switch cmd {
			case cmdPause:
				// Cancel the timer entirely rather than ignoring ticks, so a
				// paused console issues no requests at all.
				ticker.Stop()
				tickCh = nil

			case cmdResume:
				ticker.Stop()
				ticker = time.NewTicker(p.interval)
				tickCh = ticker.C

			case cmdRefresh:
				p.beginFetch(ctx, TriggerManual, false)

			case cmdForceRefresh:
				p.beginFetch(ctx, TriggerFilters, true)
			}
		}
	}
}

// beginFetch issues a fetch unless one is already in flight. When force is
// set (filter change), the stale in-flight fetch is aborted and superseded
// by a new generation; its response, if any, is discarded on arrival.
func (p *Poller) beginFetch(ctx context.Context, trigger string, force bool) {
	p.mu.Lock()
	if p.inFlight {
		if !force {
			p.mu.Unlock()
			return
		}
		if p.cancelFetch != nil {
			p.cancelFetch()
		}
		// The cancelled fetch's result must never surface, even if it
		// lands before the replacement's. Marking its generation applied
		// makes apply drop it unconditionally.
		p.appliedGen = p.issuedGen
	}

	p.inFlight = true
	p.issuedGen++
	gen := p.issuedGen

	if len(p.buses) == 0 && p.lastUpdated.IsZero() {
		p.state = StateLoading
	} else {
		p.state = StateRefreshing
	}

	params := cloneValues(p.params)
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	p.cancelFetch = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		start := time.Now()
		buses, err := p.fetcher.FetchActiveBuses(fetchCtx, params)
		p.apply(gen, trigger, buses, err, time.Since(start))
	}()
}

// apply writes a fetch result into visible state, enforcing issue-order:
// a response for a superseded generation is dropped.
func (p *Poller) apply(gen uint64, trigger string, buses []models.ActiveBus, fetchErr error, elapsed time.Duration) {
	p.mu.Lock()

	if gen <= p.appliedGen {
		p.mu.Unlock()
		logging.LogOperation(p.logger, "stale_poll_response_dropped", slog.String("trigger", trigger))
		return
	}
	p.appliedGen = gen
	if gen == p.issuedGen {
		p.inFlight = false
		p.cancelFetch = nil
	}

	firstLoad := p.state == StateLoading
	var count int

	if fetchErr != nil {
		p.lastErr = fetchErr.Error()
		var re retryableError
		p.retryable = errors.As(fetchErr, &re) && re.Retryable()
		if firstLoad {
			// Nothing to fall back on: a full error surface with a retry
			// action.
			p.state = StateFailed
		} else {
			// Stale data beats no data: keep the prior set visible and let
			// the error ride in a banner.
			p.state = StateReady
		}
		count = len(p.buses)
	} else {
		p.buses = buses
		p.lastErr = ""
		p.retryable = false
		p.lastUpdated = p.clock.Now()
		p.state = StateReady
		p.advanceTrails(buses)
		count = len(buses)
	}
	background := !firstLoad
	p.mu.Unlock()

	p.finishPoll(trigger, count, elapsed, fetchErr, background)
}

// finishPoll handles the off-lock bookkeeping of a completed poll:
// metrics, logs, failure banners, history.
func (p *Poller) finishPoll(trigger string, count int, elapsed time.Duration, fetchErr error, background bool) {
	outcome := "success"
	if fetchErr != nil {
		outcome = "failure"
	}

	if p.metrics != nil {
		p.metrics.PollsTotal.WithLabelValues(trigger, outcome).Inc()
		p.metrics.PollDuration.Observe(elapsed.Seconds())
		if fetchErr == nil {
			p.metrics.ActiveBuses.Set(float64(count))
			p.metrics.LastPollTimestamp.Set(float64(p.clock.Now().Unix()))
		}
	}

	if fetchErr != nil {
		logging.LogError(p.logger, "active bus poll failed", fetchErr,
			slog.String("trigger", trigger),
			slog.Bool("background", background))
		if background && p.notifier != nil {
			p.notifier.Show("Failed to refresh active buses: "+fetchErr.Error(), notify.TypeError)
		}
	} else {
		logging.LogOperation(p.logger, "active_buses_polled",
			slog.String("trigger", trigger),
			slog.Int("count", count),
			slog.Duration("duration", elapsed))
	}

	if p.recorder != nil {
		if err := p.recorder.RecordRefresh(p.clock.Now(), trigger, count, elapsed, fetchErr); err != nil {
			logging.LogError(p.logger, "failed to record refresh history", err)
		}
	}
}

// advanceTrails appends current positions to the per-bus history, capped
// at trailLength points. Buses absent from the new set lose their trail.
// Caller must hold p.mu.
func (p *Poller) advanceTrails(buses []models.ActiveBus) {
	next := make(map[string][]models.LatLng, len(buses))
	for _, bus := range buses {
		trail := append(p.trails[bus.ID], bus.CurrentLocation)
		if len(trail) > p.trailLength {
			trail = trail[len(trail)-p.trailLength:]
		}
		next[bus.ID] = trail
	}
	p.trails = next
}

// Refresh requests an immediate poll. Always permitted, paused or not,
// and never touches the pause flag. Deduplicated against an in-flight
// fetch.
func (p *Poller) Refresh() {
	p.send(cmdRefresh)
}

// UpdateFilters swaps the server-side poll parameters and forces an
// immediate refresh, superseding any in-flight fetch with stale
// parameters. Unchanged parameters are a no-op so read paths can call
// this on every request.
func (p *Poller) UpdateFilters(params url.Values) {
	p.mu.Lock()
	if p.params.Encode() == params.Encode() {
		p.mu.Unlock()
		return
	}
	p.params = cloneValues(params)
	p.mu.Unlock()
	p.send(cmdForceRefresh)
}

// Pause cancels the interval timer entirely. Manual refreshes remain
// available while paused.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.send(cmdPause)
}

// Resume restarts the interval timer from zero, not from where it left
// off.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.send(cmdResume)
}

// IsPaused reports whether auto-refresh is paused.
func (p *Poller) IsPaused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// Snapshot returns a copy of the current visible state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		State:       p.state,
		Buses:       append([]models.ActiveBus(nil), p.buses...),
		Err:         p.lastErr,
		Retryable:   p.retryable,
		LastUpdated: p.lastUpdated,
	}
}

// Trail returns the recorded position history for one bus, oldest first.
func (p *Poller) Trail(busID string) []models.LatLng {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]models.LatLng(nil), p.trails[busID]...)
}

// Stop shuts the loop down, aborts any in-flight fetch, and waits for all
// poller goroutines to exit. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.shutdownChan)
		p.mu.Lock()
		if p.cancelFetch != nil {
			p.cancelFetch()
		}
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Poller) send(cmd command) {
	select {
	case p.controlCh <- cmd:
	case <-p.shutdownChan:
	}
}

func cloneValues(values url.Values) url.Values {
	if values == nil {
		return nil
	}
	cloned := make(url.Values, len(values))
	for key, vals := range values {
		cloned[key] = append([]string(nil), vals...)
	}
	return cloned
}
