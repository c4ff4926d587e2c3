// Package dashboard orchestrates fetch, aggregate and reconcile cycles for
// the daily view: optimistic updates on add/delete, coalesced refresh after
// mutations, and stale-response discard when the viewed week changes.
package dashboard

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/aggregate"
	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/model"
)

const dateLayout = "2006-01-02"

// ErrBusy is returned when a mutation arrives while a previous one has not
// been confirmed and reconciled yet.
var ErrBusy = errors.New("another change is still being applied")

// State is the controller's position in the mutation lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// FoodGateway is the slice of the food-entry gateway the controller needs.
type FoodGateway interface {
	AddEntry(ctx context.Context, entry model.NewFoodEntry) (model.FoodEntry, error)
	EntriesForDate(ctx context.Context, date string) ([]model.FoodEntry, error)
	DailyTotals(ctx context.Context, date string) (model.DailyTotals, error)
	DeleteEntry(ctx context.Context, id int64) (bool, error)
	History(ctx context.Context, start, end string) ([]aggregate.HistoryRow, error)
}

// Snapshot is a consistent copy of the displayed state.
type Snapshot struct {
	State      State
	Err        error
	Entries    []model.FoodEntry
	Totals     model.DailyTotals
	Week       aggregate.WeekSeries
	WeekOffset int
}

// Controller holds the dashboard state and manages its reconcile loop.
type Controller struct {
	log      *zap.Logger
	food     FoodGateway
	retry    apiclient.RetryPolicy
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	state      State
	lastErr    error
	entries    []model.FoodEntry
	totals     model.DailyTotals
	week       aggregate.WeekSeries
	weekOffset int
	changes    uint64
	refreshed  uint64
	fetchSeq   uint64

	ticker *time.Ticker
	quit   chan struct{}
}

// New creates a Controller. interval is the delay between a mutation and the
// server-truth refresh; rapid mutations within one interval coalesce into a
// single refresh.
func New(log *zap.Logger, food FoodGateway, retry apiclient.RetryPolicy, interval time.Duration, now func() time.Time) *Controller {
	if interval <= 0 {
		interval = time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Controller{
		log:      log,
		food:     food,
		retry:    retry,
		interval: interval,
		now:      now,
		quit:     make(chan struct{}),
		ticker:   time.NewTicker(interval),
	}
}

// Start runs the reconcile ticker until Stop is called. A final reconcile
// runs on shutdown so a trailing mutation is not left unconfirmed.
func (c *Controller) Start(ctx context.Context) {
	for {
		select {
		case <-c.ticker.C:
			c.reconcile(ctx)
		case <-c.quit:
			c.reconcile(ctx)
			c.ticker.Stop()
			return
		}
	}
}

// Stop signals the reconcile loop to flush and shut down.
func (c *Controller) Stop() {
	close(c.quit)
}

// Load performs the initial fetch of today's entries, today's totals and the
// current week series.
func (c *Controller) Load(ctx context.Context) error {
	today := c.today()

	entries, err := c.food.EntriesForDate(ctx, today)
	if err != nil {
		return err
	}
	totals, err := c.food.DailyTotals(ctx, today)
	if err != nil {
		return err
	}

	c.mu.Lock()
	offset := c.weekOffset
	c.mu.Unlock()

	week, err := c.fetchWeek(ctx, offset)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.totals = totals
	c.week = week
	c.state = StateIdle
	c.lastErr = nil
	c.refreshed = c.changes
	return nil
}

// AddEntry submits a new entry, applies it optimistically and schedules a
// server-truth refresh. A second mutation is rejected until the first one has
// been reconciled.
func (c *Controller) AddEntry(ctx context.Context, entry model.NewFoodEntry) (model.FoodEntry, error) {
	if err := c.begin(); err != nil {
		return model.FoodEntry{}, err
	}

	saved, err := c.food.AddEntry(ctx, entry)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		c.lastErr = err
		return model.FoodEntry{}, err
	}

	c.entries = append(c.entries, saved)
	c.applyDelta(saved, +1)
	c.lastErr = nil
	c.state = StateReconciling
	c.changes++
	return saved, nil
}

// DeleteEntry removes an entry. On failure the entry stays in the local
// cache; only a confirmed delete evicts it.
func (c *Controller) DeleteEntry(ctx context.Context, id int64) error {
	if err := c.begin(); err != nil {
		return err
	}

	ok, err := c.food.DeleteEntry(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || !ok {
		if err == nil {
			err = errors.New("delete was not confirmed")
		}
		c.state = StateIdle
		c.lastErr = err
		return err
	}

	for i, e := range c.entries {
		if e.ID == id {
			c.applyDelta(e, -1)
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.lastErr = nil
	c.state = StateReconciling
	c.changes++
	return nil
}

// SetWeekOffset switches the viewed week window and fetches its series. A
// response belonging to a window that is no longer current is discarded, so
// racing switches cannot clobber the newer view.
func (c *Controller) SetWeekOffset(ctx context.Context, offset int) error {
	c.mu.Lock()
	c.weekOffset = offset
	c.fetchSeq++
	seq := c.fetchSeq
	c.mu.Unlock()

	week, err := c.fetchWeek(ctx, offset)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		c.log.Debug("discarding stale week response", zap.Int("offset", offset))
		return nil
	}
	c.week = week
	return nil
}

// Snapshot returns a copy of the displayed state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]model.FoodEntry, len(c.entries))
	copy(entries, c.entries)
	return Snapshot{
		State:      c.state,
		Err:        c.lastErr,
		Entries:    entries,
		Totals:     c.totals,
		Week:       c.week,
		WeekOffset: c.weekOffset,
	}
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting || c.state == StateReconciling {
		return ErrBusy
	}
	c.state = StateSubmitting
	return nil
}

// reconcile replaces optimistic state with server truth when there are
// unconfirmed changes. On fetch failure the arithmetic adjustment applied at
// mutation time stays in place rather than blocking the view.
func (c *Controller) reconcile(ctx context.Context) {
	c.mu.Lock()
	if c.changes == c.refreshed {
		c.mu.Unlock()
		return
	}
	target := c.changes
	offset := c.weekOffset
	c.mu.Unlock()

	today := c.today()
	var totals model.DailyTotals
	totalsErr := c.retry.Do(ctx, func() error {
		var err error
		totals, err = c.food.DailyTotals(ctx, today)
		return err
	})

	week, weekErr := c.fetchWeek(ctx, offset)

	c.mu.Lock()
	defer c.mu.Unlock()
	if totalsErr == nil {
		c.totals = totals
	} else {
		c.log.Warn("totals refresh failed, keeping locally adjusted totals", zap.Error(totalsErr))
	}
	if weekErr == nil && offset == c.weekOffset {
		c.week = week
	} else if weekErr != nil {
		c.log.Warn("week refresh failed", zap.Error(weekErr))
	}
	c.refreshed = target
	if c.state == StateReconciling {
		c.state = StateIdle
	}
}

func (c *Controller) fetchWeek(ctx context.Context, offset int) (aggregate.WeekSeries, error) {
	start, end := aggregate.Window(c.now(), offset)

	var rows []aggregate.HistoryRow
	err := c.retry.Do(ctx, func() error {
		var e error
		rows, e = c.food.History(ctx, start.Format(dateLayout), end.Format(dateLayout))
		return e
	})
	if err != nil {
		return aggregate.WeekSeries{}, err
	}

	var snapshot *aggregate.HistoryRow
	if offset == 0 {
		// Today's live totals are fresher than the history rollup for the
		// same date, so fetch them separately and let them win.
		if totals, err := c.food.DailyTotals(ctx, c.today()); err == nil {
			snapshot = &aggregate.HistoryRow{
				Date:          c.today(),
				TotalCalories: totals.TotalCalories,
				TotalProtein:  totals.TotalProtein,
				TotalCarbs:    totals.TotalCarbs,
				TotalFats:     totals.TotalFats,
			}
		} else {
			c.log.Warn("today snapshot fetch failed, history rows stand alone", zap.Error(err))
		}
	}

	return aggregate.Week(rows, snapshot, aggregate.Options{Now: c.now, WeekOffset: offset}), nil
}

func (c *Controller) applyDelta(e model.FoodEntry, sign float64) {
	c.totals.TotalCalories = math.Max(0, c.totals.TotalCalories+sign*e.Calories)
	c.totals.TotalProtein = math.Max(0, c.totals.TotalProtein+sign*e.Protein)
	c.totals.TotalCarbs = math.Max(0, c.totals.TotalCarbs+sign*e.Carbs)
	c.totals.TotalFats = math.Max(0, c.totals.TotalFats+sign*e.Fat)
}

func (c *Controller) today() string {
	return c.now().Format(dateLayout)
}
