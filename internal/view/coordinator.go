package view

import (
	"html/template"
	"time"

	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
)

// Page receives the fragments a recompute produces.
type Page interface {
	SetPrimary(html template.HTML)
	SetSecondary(html template.HTML)
	SetCount(text string)
}

// Options configures a Coordinator.
type Options struct {
	// Debounce delays search recomputes. Zero recomputes on every keystroke.
	Debounce time.Duration
	// Clock drives the debounce timer. Nil means SystemClock.
	Clock Clock
	// SecondaryVisible renders the secondary layout in the same pass as the
	// primary one instead of deferring it to an idle slot.
	SecondaryVisible bool
	// Initial is the filter state the page was first rendered with.
	Initial filter.Criteria
	// OnRender observes every recompute. Optional.
	OnRender func(r Rendering, elapsed time.Duration)
}

// Coordinator owns the filter state of one page view and keeps the page in
// step with it. All methods must run on the Coordinator's Loop.
type Coordinator struct {
	loop     *Loop
	page     Page
	data     Dataset
	opts     Options
	debounce *Debouncer

	criteria filter.Criteria
	gen      uint64
}

// NewCoordinator binds a dataset to a page. It does not render; the page is
// expected to already show the output for opts.Initial.
func NewCoordinator(loop *Loop, page Page, data Dataset, opts Options) *Coordinator {
	c := &Coordinator{
		loop:     loop,
		page:     page,
		data:     data,
		opts:     opts,
		criteria: opts.Initial,
	}
	if opts.Debounce > 0 {
		c.debounce = NewDebouncer(opts.Clock, opts.Debounce, loop.Post)
	}
	return c
}

// Criteria returns the current filter state.
func (c *Coordinator) Criteria() filter.Criteria {
	return c.criteria
}

// Dataset returns the dataset the coordinator renders.
func (c *Coordinator) Dataset() Dataset {
	return c.data
}

// SearchInput records a keystroke in the search box. The recompute waits
// for the debounce period; a newer keystroke replaces the pending one.
func (c *Coordinator) SearchInput(term string) {
	if c.debounce == nil {
		c.criteria.Search = term
		c.Refresh()
		return
	}
	c.debounce.Trigger(func() {
		c.criteria.Search = term
		c.Refresh()
	})
}

// SetPass changes the pass filter and recomputes immediately.
func (c *Coordinator) SetPass(p domain.Pass) {
	c.criteria.Pass = p
	c.Refresh()
}

// SetAccess changes the operational-hours filter and recomputes immediately.
func (c *Coordinator) SetAccess(a filter.AccessFilter) {
	c.criteria.Access = a
	c.Refresh()
}

// Select commits an autocomplete choice as the search term. Any pending
// debounced keystroke is dropped.
func (c *Coordinator) Select(name string) {
	if c.debounce != nil {
		c.debounce.Cancel()
	}
	c.criteria.Search = name
	c.Refresh()
}

// SetSecondaryVisible records whether the secondary layout is on screen.
// Becoming visible renders it right away.
func (c *Coordinator) SetSecondaryVisible(visible bool) {
	was := c.opts.SecondaryVisible
	c.opts.SecondaryVisible = visible
	if visible && !was {
		if r := c.data.Render(c.criteria); r.Secondary != nil {
			c.gen++
			c.page.SetSecondary(r.Secondary())
		}
	}
}

// Stop cancels any pending debounced recompute.
func (c *Coordinator) Stop() {
	if c.debounce != nil {
		c.debounce.Cancel()
	}
}

// Refresh filters and renders with the current state. The primary layout is
// written first. The secondary layout follows in the same pass when visible,
// otherwise it is left to an idle slot and skipped if a newer recompute has
// happened by then. The count is written last.
func (c *Coordinator) Refresh() {
	start := time.Now()
	r := c.data.Render(c.criteria)
	c.gen++
	gen := c.gen

	c.page.SetPrimary(r.Primary)
	if r.Secondary != nil {
		if c.opts.SecondaryVisible {
			c.page.SetSecondary(r.Secondary())
		} else {
			c.loop.Idle(func() {
				if c.gen == gen {
					c.page.SetSecondary(r.Secondary())
				}
			})
		}
	}
	c.page.SetCount(r.Count)

	if c.opts.OnRender != nil {
		c.opts.OnRender(r, time.Since(start))
	}
}
