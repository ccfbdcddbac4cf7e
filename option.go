package wctx

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Option mutates the Container during construction.
type Option func(*Container) error

// WithLogger installs the container logger.
func WithLogger(logger Logger) Option {
	return func(c *Container) error {
		if logger == nil {
			return errors.New("nil logger provided")
		}
		c.logger = logger
		return nil
	}
}

// WithConfig wires the container's bootstrap property store.
func WithConfig(cfg *Config) Option {
	return func(c *Container) error {
		if cfg == nil {
			return errors.New("nil config provided")
		}
		c.config = cfg
		return nil
	}
}

// WithAddr sets the listen address. Accepts ":8080", "8080" or
// "0.0.0.0:8080" forms.
func WithAddr(addr string) Option {
	return func(c *Container) error {
		c.addr = NormalizePort(addr, c.addr)
		return nil
	}
}

// WithInitParams seeds bootstrap params, the equivalent of the host
// container's init-param table.
func WithInitParams(params map[string]string) Option {
	return func(c *Container) error {
		for name, value := range params {
			c.params[name] = value
		}
		return nil
	}
}

// WithListeners registers lifecycle listeners during construction.
func WithListeners(listeners ...LifecycleListener) Option {
	return func(c *Container) error {
		for _, l := range listeners {
			if l == nil {
				return errors.New("nil listener provided")
			}
			c.listeners = append(c.listeners, l)
		}
		return nil
	}
}

// WithMiddleware registers middlewares applied to every request, after the
// built-in request-id and request-logger middlewares, in the order provided.
func WithMiddleware(middlewares ...func(http.Handler) http.Handler) Option {
	return func(c *Container) error {
		c.middlewares = append(c.middlewares, middlewares...)
		return nil
	}
}

// WithRouterConfigurator allows callers to mutate the underlying *chi.Mux
// before any routes are registered.
func WithRouterConfigurator(configurer func(*chi.Mux)) Option {
	return func(c *Container) error {
		if configurer == nil {
			return errors.New("nil router configurator provided")
		}
		c.routerConfig = append(c.routerConfig, configurer)
		return nil
	}
}

// WithDebugRoutes enables the /debug endpoints.
func WithDebugRoutes() Option {
	return func(c *Container) error {
		c.debugRoutes = true
		return nil
	}
}
