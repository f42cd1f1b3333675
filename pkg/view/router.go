package view

import (
	"errors"
	"fmt"
	"sync"
)

type View string

const (
	FormView View = "form"
	InfoView View = "info"
)

var ErrInvalidTransition = errors.New("invalid view transition")

// Router switches between the prediction form and the model info page. The only
// transitions are FormView -> InfoView and back.
type Router struct {
	mu      sync.Mutex
	current View
}

func NewRouter() *Router {
	return &Router{current: FormView}
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

func (r *Router) ShowModelInfo() error {
	return r.transition(FormView, InfoView)
}

func (r *Router) GoBack() error {
	return r.transition(InfoView, FormView)
}

func (r *Router) transition(from View, to View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.current, to)
	}

	r.current = to

	return nil
}
