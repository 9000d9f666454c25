// Package autocomplete implements the suggestion dropdown attached to a
// search input.
//
// A Controller owns the dropdown state (the current items, whether the list
// is open and which item is highlighted) and mirrors every change onto a
// Surface, which is whatever actually displays the input and the list. The
// controller is not safe for concurrent use; live sessions drive it from
// their single event loop.
package autocomplete

import (
	"html/template"
	"strings"

	"github.com/DukeRupert/uphill/internal/render"
)

// DefaultLimit is the number of suggestions shown when Options.Limit is unset.
const DefaultLimit = 8

// Surface is the display side of one autocomplete: a text input plus its
// suggestion list.
type Surface interface {
	// SetItems replaces the list content.
	SetItems(items template.HTML)
	// SetOpen shows or hides the list and sets aria-expanded on the input.
	SetOpen(open bool)
	// SetActive highlights the item at index and points aria-activedescendant
	// at it. -1 clears both.
	SetActive(index int)
	// SetValue writes the input's value.
	SetValue(value string)
}

// State is the visible state of the dropdown.
type State int

const (
	Closed State = iota
	OpenWithResults
	OpenEmpty
)

func (s State) String() string {
	switch s {
	case OpenWithResults:
		return "open"
	case OpenEmpty:
		return "empty"
	default:
		return "closed"
	}
}

// Key is a keyboard key the controller reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyDown
	KeyUp
	KeyEnter
	KeyEscape
)

// ParseKey maps a DOM KeyboardEvent.key value onto a Key.
func ParseKey(key string) Key {
	switch key {
	case "ArrowDown", "Down":
		return KeyDown
	case "ArrowUp", "Up":
		return KeyUp
	case "Enter":
		return KeyEnter
	case "Escape", "Esc":
		return KeyEscape
	default:
		return KeyOther
	}
}

// Options configures a Controller for one item type.
type Options[T any] struct {
	// Query returns every item matching the search text, best match first.
	Query func(value string) []T
	// Name is the text an item commits into the input.
	Name func(item T) string
	// Render draws the item at index with value highlighted.
	Render func(item T, index int, value string) template.HTML
	// OnSelect is called after an item is committed. Optional.
	OnSelect func(name string)
	// EmptyMessage is shown when the query matches nothing.
	EmptyMessage string
	// Limit caps the number of suggestions. Zero means DefaultLimit.
	Limit int
	// Value is the text already in the input when the controller starts.
	Value string
}

// Controller drives one autocomplete dropdown.
type Controller[T any] struct {
	opts    Options[T]
	surface Surface

	value  string
	items  []T
	active int
	state  State
}

// New returns a closed controller bound to surface.
func New[T any](surface Surface, opts Options[T]) *Controller[T] {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Controller[T]{
		opts:    opts,
		surface: surface,
		value:   opts.Value,
		active:  -1,
	}
}

// State returns the current dropdown state.
func (c *Controller[T]) State() State { return c.state }

// Active returns the highlighted index, or -1.
func (c *Controller[T]) Active() int { return c.active }

// Value returns the last known input value.
func (c *Controller[T]) Value() string { return c.value }

// Items returns the suggestions currently listed.
func (c *Controller[T]) Items() []T { return c.items }

// Count returns the number of suggestions currently listed.
func (c *Controller[T]) Count() int { return len(c.items) }

// Input handles an input event: a non-empty value regenerates and opens the
// list, an empty one closes it.
func (c *Controller[T]) Input(value string) {
	c.value = value
	if value == "" {
		c.items = nil
		c.close()
		return
	}
	c.regenerate()
}

// Key handles a keydown on the input.
func (c *Controller[T]) Key(k Key) {
	switch k {
	case KeyDown:
		if c.state == Closed {
			c.Focus()
			return
		}
		c.move(1)
	case KeyUp:
		c.move(-1)
	case KeyEnter:
		if c.state == OpenWithResults && c.active >= 0 && c.active < len(c.items) {
			c.commit(c.active)
		}
	case KeyEscape:
		c.close()
	}
}

// Pick commits the item at index, as a pointer selection does.
func (c *Controller[T]) Pick(index int) {
	if c.state != OpenWithResults || index < 0 || index >= len(c.items) {
		return
	}
	c.commit(index)
}

// ClickOutside closes the list when the pointer lands outside the input and
// the list.
func (c *Controller[T]) ClickOutside() {
	if c.state != Closed {
		c.close()
	}
}

// Focus reopens the list for the current value, if there is one.
func (c *Controller[T]) Focus() {
	if c.value == "" {
		return
	}
	c.regenerate()
}

func (c *Controller[T]) regenerate() {
	matches := c.opts.Query(c.value)
	if len(matches) > c.opts.Limit {
		matches = matches[:c.opts.Limit]
	}
	c.items = matches

	var b strings.Builder
	if len(matches) == 0 {
		c.state = OpenEmpty
		b.WriteString(string(render.SuggestionEmpty(c.opts.EmptyMessage)))
	} else {
		c.state = OpenWithResults
		for i, item := range matches {
			b.WriteString(string(c.opts.Render(item, i, c.value)))
		}
	}

	c.active = -1
	c.surface.SetItems(template.HTML(b.String()))
	c.surface.SetActive(-1)
	c.surface.SetOpen(true)
}

// move advances the highlight by delta, wrapping at both ends. From no
// highlight, Down lands on the first item and Up on the last.
func (c *Controller[T]) move(delta int) {
	n := len(c.items)
	if c.state != OpenWithResults || n == 0 {
		return
	}
	switch {
	case c.active < 0 && delta < 0:
		c.active = n - 1
	case c.active < 0:
		c.active = 0
	default:
		c.active = (c.active + delta + n) % n
	}
	c.surface.SetActive(c.active)
}

func (c *Controller[T]) commit(index int) {
	name := c.opts.Name(c.items[index])
	c.value = name
	c.surface.SetValue(name)
	c.close()
	if c.opts.OnSelect != nil {
		c.opts.OnSelect(name)
	}
}

func (c *Controller[T]) close() {
	c.state = Closed
	c.active = -1
	c.surface.SetActive(-1)
	c.surface.SetOpen(false)
}
