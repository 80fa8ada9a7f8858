// Package middleware intercepts text generation calls. A chain of
// middlewares wraps a generator and sees every prompt and response.
package middleware

import (
	"context"

	"github.com/sweetpotato0/gov-allin/llm"
)

// Context carries one generation call through the chain.
type Context struct {
	// Prompt sent to the generator
	Prompt string

	// Response from the generator
	Response string

	// Metadata for passing data between middlewares
	Metadata map[string]any

	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context, prompt string) *Context {
	return &Context{
		Prompt:   prompt,
		Metadata: make(map[string]any),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// Middleware intercepts a generation call. Returning an error stops the
// chain.
type Middleware interface {
	// Name returns the name of the middleware for logging
	Name() string

	// Execute runs the middleware logic around next
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// MiddlewareChain represents a sequence of middleware to be executed
type MiddlewareChain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain. Nil middlewares are skipped.
func NewChain(middlewares ...Middleware) *MiddlewareChain {
	c := &MiddlewareChain{}
	for _, m := range middlewares {
		c.Add(m)
	}
	return c
}

// Add appends a middleware to the chain
func (c *MiddlewareChain) Add(m Middleware) *MiddlewareChain {
	if m != nil {
		c.middlewares = append(c.middlewares, m)
	}
	return c
}

// Len returns the number of middlewares.
func (c *MiddlewareChain) Len() int { return len(c.middlewares) }

// Execute runs all middlewares in the chain, then finalHandler.
func (c *MiddlewareChain) Execute(ctx *Context, finalHandler Handler) error {
	if ctx == nil {
		return ErrInvalidContext
	}
	return c.executeMiddleware(ctx, 0, finalHandler)
}

func (c *MiddlewareChain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}
	next := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, next)
}

// Generator is a TextGenerator that runs every call through a chain.
type Generator struct {
	next  llm.TextGenerator
	chain *MiddlewareChain
}

var _ llm.TextGenerator = (*Generator)(nil)

// Wrap puts gen behind the given middlewares, outermost first.
func Wrap(gen llm.TextGenerator, middlewares ...Middleware) *Generator {
	return &Generator{next: gen, chain: NewChain(middlewares...)}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	mc := NewContext(ctx, prompt)
	err := g.chain.Execute(mc, func(mc *Context) error {
		out, err := g.next.Generate(mc.Context(), mc.Prompt)
		if err != nil {
			return err
		}
		mc.Response = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return mc.Response, nil
}
