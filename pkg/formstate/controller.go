package formstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrSubmissionPending = errors.New("a prediction request is already in progress")

const SubmissionFailedMessage = "Something went wrong! Please try again."

type NotificationKind string

const (
	NotificationValidation       NotificationKind = "validation"
	NotificationSubmissionFailed NotificationKind = "submission-failed"
)

// Notification is a transient message for the user. It never blocks further edits.
type Notification struct {
	Kind    NotificationKind `json:"kind" groups:"basic"`
	Message string           `json:"message" groups:"basic"`
}

type State struct {
	Input            itinerary.Input `json:"input" groups:"basic"`
	PredictionResult string          `json:"prediction_result" groups:"basic"`
	Notification     *Notification   `json:"notification" groups:"basic"`
	Pending          bool            `json:"pending" groups:"basic"`

	LastSubmitted time.Time `json:"last_submitted" groups:"detailed"`
}

// Controller owns the itinerary being edited, validates it on submit and holds the
// latest prediction or notification for display.
//
// A failed submission keeps the previously displayed prediction. Only one
// submission may be in flight at a time; further submits are rejected with
// ErrSubmissionPending until it completes.
type Controller struct {
	predictor prediction.Predictor
	now       func() time.Time
	location  *time.Location
	logger    zerolog.Logger

	mu            sync.Mutex
	input         itinerary.Input
	result        string
	notification  *Notification
	pending       bool
	generation    uint64
	lastSubmitted time.Time
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithLocation sets the zone datetime-local values are interpreted in
func WithLocation(location *time.Location) Option {
	return func(c *Controller) {
		if location != nil {
			c.location = location
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(predictor prediction.Predictor, opts ...Option) *Controller {
	c := &Controller{
		predictor: predictor,
		now:       time.Now,
		location:  time.Local,
		logger:    log.Logger,
		input:     itinerary.Defaults(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) SetField(name string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input.Set(name, value)
}

// SetFields applies every named value or none of them
func (c *Controller) SetFields(fields map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	input := c.input
	for name, value := range fields {
		if err := input.Set(name, value); err != nil {
			return err
		}
	}

	c.input = input

	return nil
}

func (c *Controller) Input() itinerary.Input {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

// TakeState returns the state and dismisses its notification in one step, so a
// notification is seen by exactly one caller
func (c *Controller) TakeState() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.snapshot()
	c.notification = nil

	return state
}

func (c *Controller) snapshot() State {
	state := State{
		Input:            c.input,
		PredictionResult: c.result,
		Pending:          c.pending,
		LastSubmitted:    c.lastSubmitted,
	}
	if c.notification != nil {
		notification := *c.notification
		state.Notification = &notification
	}

	return state
}

// Submit validates the current itinerary and, when it passes, sends it to the
// predictor exactly once. Validation failures return *itinerary.ValidationError,
// predictor failures return *prediction.TransportError.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()

	if c.pending {
		c.mu.Unlock()
		return ErrSubmissionPending
	}

	input := c.input
	if _, err := input.Check(c.now(), c.location); err != nil {
		c.notification = &Notification{Kind: NotificationValidation, Message: err.Error()}
		c.mu.Unlock()

		c.logger.Debug().Err(err).Msg("Itinerary failed validation")
		return err
	}

	c.pending = true
	generation := c.generation
	c.mu.Unlock()

	c.logger.Debug().
		Str("source", input.Source).
		Str("destination", input.Destination).
		Str("airline", input.Airline).
		Msg("Requesting fare prediction")

	text, err := c.predict(ctx, input, generation)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Reset while the request was in flight; the response belongs to a discarded form
	if generation != c.generation {
		return err
	}

	c.pending = false
	c.lastSubmitted = c.now()

	if err != nil {
		var transportErr *prediction.TransportError
		if !errors.As(err, &transportErr) {
			err = &prediction.TransportError{Err: err}
		}

		c.logger.Error().Err(err).Msg("Error submitting the form")
		c.notification = &Notification{Kind: NotificationSubmissionFailed, Message: SubmissionFailedMessage}

		return err
	}

	c.result = text
	c.notification = nil

	return nil
}

// predict calls the predictor, releasing the pending flag if it panics
func (c *Controller) predict(ctx context.Context, input itinerary.Input, generation uint64) (string, error) {
	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			if generation == c.generation {
				c.pending = false
			}
			c.mu.Unlock()

			panic(r)
		}
	}()

	return c.predictor.Predict(ctx, input)
}

// Reset restores the default itinerary and clears the prediction and notification
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = itinerary.Defaults()
	c.result = ""
	c.notification = nil
	c.pending = false
	c.generation++
}

func (c *Controller) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notification = nil
}
