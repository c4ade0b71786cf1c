// Package navigation routes the client between its pages. A route may carry
// guards that run before the page renders and can send the user elsewhere.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
)

const maxRedirects = 8

var (
	ErrUnknownRoute  = errors.New("unknown route")
	ErrRedirectLoop  = errors.New("too many redirects")
	ErrNotNavigating = errors.New("router has no current route")
)

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
	Current() string
}

// Page is what a route shows once every guard lets the user in.
type Page interface {
	Render(ctx context.Context) error
}

type PageFunc func(ctx context.Context) error

func (f PageFunc) Render(ctx context.Context) error { return f(ctx) }

// Guard decides whether a route may be entered. It returns the path to
// redirect to, or "" to allow entry.
type Guard func(ctx context.Context) string

// Subscriber is the part of the session store the router watches.
type Subscriber interface {
	Subscribe(fn func(models.Session)) (cancel func())
}

type route struct {
	page   Page
	guards []Guard
}

type Router struct {
	mu      sync.Mutex
	routes  map[string]route
	current string
	history []string
	logger  logging.Logger
}

func NewRouter(logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Router{
		routes: make(map[string]route),
		logger: logger.With("module", "navigation"),
	}
}

// Handle registers page under path. Guards run in order; the first one that
// asks for a redirect wins.
func (r *Router) Handle(path string, page Page, guards ...Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = route{page: page, guards: guards}
}

// Navigate enters path, following guard redirects. Navigating to the current
// route is a no-op. The page is rendered without holding the router lock, so
// pages may navigate themselves.
func (r *Router) Navigate(ctx context.Context, path string) error {
	requested := path

	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			return fmt.Errorf("%w: %s", ErrRedirectLoop, requested)
		}

		r.mu.Lock()
		rt, ok := r.routes[path]
		r.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRoute, path)
		}

		target := runGuards(ctx, rt.guards)
		if target == "" {
			break
		}
		r.logger.Info(ctx, "redirect", "from", path, "to", target)
		path = target
	}

	r.mu.Lock()
	if r.current == path {
		r.mu.Unlock()
		return nil
	}
	from := r.current
	r.current = path
	r.history = append(r.history, path)
	page := r.routes[path].page
	r.mu.Unlock()

	r.logger.Debug(ctx, "navigated", "from", from, "to", path)

	if page == nil {
		return nil
	}
	return page.Render(ctx)
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the routes entered so far, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Watch re-runs the current route's guards whenever the session changes and
// performs at most one navigation per change.
func (r *Router) Watch(ctx context.Context, s Subscriber) (cancel func()) {
	return s.Subscribe(func(models.Session) {
		if err := r.Recheck(ctx); err != nil && !errors.Is(err, ErrNotNavigating) {
			r.logger.Error(ctx, "guard recheck failed", "error", err)
		}
	})
}

// Recheck runs the guards of the current route again and follows a
// redirect if one is requested.
func (r *Router) Recheck(ctx context.Context) error {
	r.mu.Lock()
	cur := r.current
	rt := r.routes[cur]
	r.mu.Unlock()

	if cur == "" {
		return ErrNotNavigating
	}

	target := runGuards(ctx, rt.guards)
	if target == "" {
		return nil
	}
	r.logger.Info(ctx, "redirect", "from", cur, "to", target)
	return r.Navigate(ctx, target)
}

// Reload shows the current route again. Its guards run first and may
// redirect instead.
func (r *Router) Reload(ctx context.Context) error {
	r.mu.Lock()
	cur := r.current
	rt := r.routes[cur]
	r.mu.Unlock()

	if cur == "" {
		return ErrNotNavigating
	}

	if target := runGuards(ctx, rt.guards); target != "" {
		r.logger.Info(ctx, "redirect", "from", cur, "to", target)
		return r.Navigate(ctx, target)
	}
	if rt.page == nil {
		return nil
	}
	return rt.page.Render(ctx)
}

func runGuards(ctx context.Context, guards []Guard) string {
	for _, g := range guards {
		if target := g(ctx); target != "" {
			return target
		}
	}
	return ""
}
