package view

import (
	"context"
	"html/template"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/render"
)

// recordingPage keeps every write in order.
type recordingPage struct {
	calls     []string
	primary   template.HTML
	secondary template.HTML
	count     string
}

func (p *recordingPage) SetPrimary(h template.HTML) {
	p.calls = append(p.calls, "primary")
	p.primary = h
}

func (p *recordingPage) SetSecondary(h template.HTML) {
	p.calls = append(p.calls, "secondary")
	p.secondary = h
}

func (p *recordingPage) SetCount(s string) {
	p.calls = append(p.calls, "count")
	p.count = s
}

// countingDataset wraps a dataset and records the criteria of each recompute.
type countingDataset struct {
	Dataset
	seen []filter.Criteria
}

func (d *countingDataset) Render(c filter.Criteria) Rendering {
	d.seen = append(d.seen, c)
	return d.Dataset.Render(c)
}

func loadResorts(t *testing.T) []domain.Resort {
	t.Helper()
	store, err := catalog.Load(catalog.EmbeddedFS(), nil)
	require.NoError(t, err)
	return store.Resorts()
}

func TestLoop_RunsTasksInOrderBeforeIdle(t *testing.T) {
	l := NewLoop()
	var got []string

	l.Idle(func() { got = append(got, "idle") })
	l.Post(func() {
		got = append(got, "a")
		l.Post(func() { got = append(got, "c") })
	})
	l.Post(func() { got = append(got, "b") })

	assert.Equal(t, 4, l.RunPending())
	assert.Equal(t, []string{"a", "b", "c", "idle"}, got)
}

func TestLoop_RejectsAfterClose(t *testing.T) {
	l := NewLoop()
	l.Close()
	assert.False(t, l.Post(func() {}))
	assert.False(t, l.Idle(func() {}))
	assert.True(t, l.Closed())
}

func TestLoop_Run(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ran := make(chan struct{})
	require.True(t, l.Post(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, l.Closed())
}

func TestDebouncer_LastWriteWins(t *testing.T) {
	clock := &ManualClock{}
	l := NewLoop()
	d := NewDebouncer(clock, 150*time.Millisecond, l.Post)

	var got []string
	for _, v := range []string{"v", "va", "vai"} {
		d.Trigger(func() { got = append(got, v) })
		clock.Advance(100 * time.Millisecond)
		l.RunPending()
	}
	assert.Empty(t, got, "nothing fires while keystrokes keep arriving")

	clock.Advance(50 * time.Millisecond)
	l.RunPending()
	assert.Equal(t, []string{"vai"}, got)
	assert.Equal(t, 0, clock.Pending())
}

func TestDebouncer_DropsTaskPostedBeforeTrigger(t *testing.T) {
	clock := &ManualClock{}
	l := NewLoop()
	d := NewDebouncer(clock, 10*time.Millisecond, l.Post)

	var got []string
	d.Trigger(func() { got = append(got, "old") })
	clock.Advance(10 * time.Millisecond) // posted, not yet run
	d.Trigger(func() { got = append(got, "new") })
	l.RunPending()
	assert.Empty(t, got)

	clock.Advance(10 * time.Millisecond)
	l.RunPending()
	assert.Equal(t, []string{"new"}, got)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &ManualClock{}
	var fired atomic.Int32
	d := NewDebouncer(clock, 10*time.Millisecond, nil)

	d.Trigger(func() { fired.Add(1) })
	d.Cancel()
	clock.Advance(time.Second)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCoordinator_SearchIsDebounced(t *testing.T) {
	clock := &ManualClock{}
	l := NewLoop()
	page := &recordingPage{}
	data := &countingDataset{Dataset: ResortDataset{Resorts: loadResorts(t)}}
	c := NewCoordinator(l, page, data, Options{Debounce: DefaultDebounce, Clock: clock, SecondaryVisible: true})

	for _, term := range []string{"c", "co", "cop"} {
		l.Post(func() { c.SearchInput(term) })
		l.RunPending()
		clock.Advance(50 * time.Millisecond)
		l.RunPending()
	}
	assert.Empty(t, data.seen)

	clock.Advance(DefaultDebounce)
	l.RunPending()

	require.Len(t, data.seen, 1, "exactly one recompute")
	assert.Equal(t, "cop", data.seen[0].Search)
	assert.Equal(t, "cop", c.Criteria().Search)
	assert.Equal(t, "1 of 25 resorts", page.count)
	assert.Contains(t, string(page.primary), "Copper Mountain")
}

func TestCoordinator_SelectsAreImmediate(t *testing.T) {
	l := NewLoop()
	page := &recordingPage{}
	resorts := loadResorts(t)
	c := NewCoordinator(l, page, ResortDataset{Resorts: resorts}, Options{Debounce: DefaultDebounce, Clock: &ManualClock{}, SecondaryVisible: true})

	c.SetPass(domain.PassEpic)
	want := filter.Resorts(resorts, filter.Criteria{Pass: domain.PassEpic})
	assert.Equal(t, render.Cards(want), page.primary)
	assert.Equal(t, render.TableRows(want), page.secondary)
	assert.Equal(t, render.ResortCount(len(want), len(resorts)), page.count)

	c.SetAccess(filter.AccessYes)
	want = filter.Resorts(resorts, filter.Criteria{Pass: domain.PassEpic, Access: filter.AccessYes})
	assert.Equal(t, render.Cards(want), page.primary)
}

func TestCoordinator_SelectCancelsPendingSearch(t *testing.T) {
	clock := &ManualClock{}
	l := NewLoop()
	page := &recordingPage{}
	data := &countingDataset{Dataset: ResortDataset{Resorts: loadResorts(t)}}
	c := NewCoordinator(l, page, data, Options{Debounce: DefaultDebounce, Clock: clock, SecondaryVisible: true})

	c.SearchInput("wol")
	c.Select("Winter Park")
	clock.Advance(time.Second)
	l.RunPending()

	require.Len(t, data.seen, 1)
	assert.Equal(t, "Winter Park", c.Criteria().Search)
}

func TestCoordinator_WriteOrder(t *testing.T) {
	l := NewLoop()
	page := &recordingPage{}
	c := NewCoordinator(l, page, ResortDataset{Resorts: loadResorts(t)}, Options{SecondaryVisible: true})

	c.Refresh()
	assert.Equal(t, []string{"primary", "secondary", "count"}, page.calls)
}

func TestCoordinator_HiddenSecondaryIsDeferred(t *testing.T) {
	l := NewLoop()
	page := &recordingPage{}
	resorts := loadResorts(t)
	c := NewCoordinator(l, page, ResortDataset{Resorts: resorts}, Options{})

	c.SearchInput("mountain")
	assert.Equal(t, []string{"primary", "count"}, page.calls)
	assert.Empty(t, page.secondary)

	l.RunPending()
	assert.Equal(t, []string{"primary", "count", "secondary"}, page.calls)
	assert.Equal(t, render.TableRows(filter.Resorts(resorts, filter.Criteria{Search: "mountain"})), page.secondary)
}

func TestCoordinator_StaleDeferredRenderIsSkipped(t *testing.T) {
	l := NewLoop()
	page := &recordingPage{}
	resorts := loadResorts(t)
	c := NewCoordinator(l, page, ResortDataset{Resorts: resorts}, Options{})

	c.SearchInput("vail")
	c.SearchInput("aspen")
	l.RunPending()

	assert.Equal(t, render.TableRows(filter.Resorts(resorts, filter.Criteria{Search: "aspen"})), page.secondary)
	assert.Equal(t, 1, countOf(page.calls, "secondary"))
}

func TestCoordinator_ClearedFiltersMatchFullRender(t *testing.T) {
	l := NewLoop()
	page := &recordingPage{}
	resorts := loadResorts(t)
	c := NewCoordinator(l, page, ResortDataset{Resorts: resorts}, Options{SecondaryVisible: true})

	c.SearchInput("creek")
	c.SetPass(domain.PassIkon)
	c.SetPass("")
	c.SearchInput("")

	assert.True(t, c.Criteria().IsZero())
	assert.Equal(t, render.Cards(resorts), page.primary)
	assert.Equal(t, render.TableRows(resorts), page.secondary)
	assert.Equal(t, "25 of 25 resorts", page.count)
}

func TestTrailMapDataset(t *testing.T) {
	store, err := catalog.Load(catalog.EmbeddedFS(), nil)
	require.NoError(t, err)

	l := NewLoop()
	page := &recordingPage{}
	var observed []Rendering
	c := NewCoordinator(l, page, TrailMapDataset{Maps: store.TrailMaps()}, Options{
		OnRender: func(r Rendering, _ time.Duration) { observed = append(observed, r) },
	})

	c.SearchInput("aspen")
	l.RunPending()
	assert.Equal(t, render.TrailMapCount(4, len(store.TrailMaps())), page.count)
	assert.NotContains(t, page.calls, "secondary")

	c.SearchInput("")
	assert.Equal(t, render.TrailMapCount(len(store.TrailMaps()), len(store.TrailMaps())), page.count)
	require.Len(t, observed, 2)
	assert.Equal(t, "trailmaps", c.Dataset().Name())
}

func countOf(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}
