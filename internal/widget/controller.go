package widget

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-widget/internal/weather"
)

// User-facing messages. Causes are only logged.
const (
	MsgInvalidLocation = "Please enter a valid location"
	MsgCityNotFound    = "City Not Found. Please Try Again!"
)

var (
	// ErrValidation is returned when the submitted query is empty after trimming.
	ErrValidation = errors.New("empty location query")
	// ErrFetch wraps any failure fetching or decoding the weather response.
	ErrFetch = errors.New("weather fetch failed")
	// ErrSuperseded is returned when a newer submission replaced this one
	// before its response arrived; the response is discarded.
	ErrSuperseded = errors.New("superseded by a newer search")
)

var validate = validator.New()

type searchInput struct {
	Query string `validate:"required"`
}

// Phase is the controller's position in its search lifecycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// State is a snapshot of a widget's transient search state.
// At most one of Reading and Error is set.
type State struct {
	Query   string           `json:"query"`
	Reading *weather.Reading `json:"reading,omitempty"`
	Error   string           `json:"error,omitempty"`
	Busy    bool             `json:"busy"`
}

// Phase derives the lifecycle phase from the state.
func (s State) Phase() Phase {
	switch {
	case s.Busy:
		return PhaseSearching
	case s.Error != "":
		return PhaseError
	case s.Reading != nil:
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// View is the rendered surface: the state plus advisory lines when a reading exists.
type View struct {
	State
	Phase      Phase               `json:"phase"`
	Advisories *weather.Advisories `json:"advisories,omitempty"`
}

// Controller owns one widget's search state and drives fetches through a provider.
// It is safe for concurrent use; the outbound call runs without holding the lock.
type Controller struct {
	provider  weather.Provider
	formatter *weather.Formatter

	mu    sync.Mutex
	state State
	// lastQuery is the most recent valid query; an empty submit clears it.
	lastQuery string
	// seq identifies the latest submission; responses for older ids are dropped.
	seq uint64
}

// NewController creates a Controller backed by provider, formatting with formatter.
func NewController(provider weather.Provider, formatter *weather.Formatter) *Controller {
	if formatter == nil {
		formatter = weather.NewFormatter(nil)
	}
	return &Controller{
		provider:  provider,
		formatter: formatter,
	}
}

// Submit runs one search for query and returns the resulting state.
// An empty query never reaches the provider.
func (c *Controller) Submit(ctx context.Context, query string) (State, error) {
	trimmed := strings.TrimSpace(query)

	c.mu.Lock()
	if err := validate.Struct(searchInput{Query: trimmed}); err != nil {
		// Advancing seq drops any in-flight response; the latest action wins.
		c.seq++
		c.lastQuery = ""
		c.state = State{Query: trimmed, Error: MsgInvalidLocation}
		st := c.state
		c.mu.Unlock()
		return st, ErrValidation
	}

	id := c.beginLocked(trimmed)
	c.mu.Unlock()

	return c.fetch(ctx, id, trimmed)
}

// Refresh re-runs the last valid search when it is still what the widget
// shows and nothing is in flight. It reports false when it did not run.
func (c *Controller) Refresh(ctx context.Context) (State, bool, error) {
	c.mu.Lock()
	q := c.lastQuery
	if q == "" || c.state.Busy || c.state.Query != q || c.state.Error == MsgInvalidLocation {
		st := c.state
		c.mu.Unlock()
		return st, false, nil
	}

	id := c.beginLocked(q)
	c.mu.Unlock()

	st, err := c.fetch(ctx, id, q)
	return st, true, err
}

// beginLocked marks a new attempt for query as in flight and returns its id.
func (c *Controller) beginLocked(query string) uint64 {
	c.seq++
	c.lastQuery = query
	c.state = State{Query: query, Busy: true}
	return c.seq
}

func (c *Controller) fetch(ctx context.Context, id uint64, query string) (State, error) {
	reading, fetchErr := c.provider.Fetch(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.seq {
		log.Printf("INFO: discarding stale %s response for %q", c.provider.Name(), query)
		return c.state, ErrSuperseded
	}

	c.state.Busy = false
	if fetchErr != nil {
		log.Printf("ERROR: error fetching weather data for %q: %v", query, fetchErr)
		c.state.Error = MsgCityNotFound
		c.state.Reading = nil
		return c.state, fmt.Errorf("%w: %w", ErrFetch, fetchErr)
	}

	c.state.Error = ""
	c.state.Reading = &reading
	return c.state, nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View renders the current state. Advisories are computed now, so the
// day/night label reflects the time of rendering.
func (c *Controller) View() View {
	return c.ViewOf(c.State())
}

// ViewOf renders st, typically the state returned by Submit, so the view
// describes that attempt even if another one started since.
func (c *Controller) ViewOf(st State) View {
	v := View{State: st, Phase: st.Phase()}
	if st.Reading != nil {
		adv := c.formatter.Format(*st.Reading)
		v.Advisories = &adv
	}
	return v
}
