package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/gov-allin/middleware"
)

// ValidatorFunc validates a prompt
type ValidatorFunc func(string) error

// FilterFunc transforms or rejects a response
type FilterFunc func(string) (string, error)

// InputValidator rejects prompts before they reach the generator.
type InputValidator struct {
	validator ValidatorFunc
}

// NewInputValidator creates an input validation middleware
func NewInputValidator(validator ValidatorFunc) *InputValidator {
	return &InputValidator{validator: validator}
}

// Name returns the middleware name
func (m *InputValidator) Name() string {
	return "InputValidator"
}

// Execute validates the prompt
func (m *InputValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.validator != nil {
		if err := m.validator(ctx.Prompt); err != nil {
			return fmt.Errorf("%w: %v", middleware.ErrInvalidInput, err)
		}
	}
	return next(ctx)
}

// MaxPromptRunes rejects blank prompts and prompts longer than limit runes.
func MaxPromptRunes(limit int) ValidatorFunc {
	return func(prompt string) error {
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("prompt is empty")
		}
		if n := utf8.RuneCountInString(prompt); limit > 0 && n > limit {
			return fmt.Errorf("prompt has %d runes, limit %d", n, limit)
		}
		return nil
	}
}

// ResponseFilter filters or transforms the response
type ResponseFilter struct {
	filter FilterFunc
}

// NewResponseFilter creates a response filtering middleware
func NewResponseFilter(filter FilterFunc) *ResponseFilter {
	return &ResponseFilter{filter: filter}
}

// Name returns the middleware name
func (m *ResponseFilter) Name() string {
	return "ResponseFilter"
}

// Execute filters the response after the generator returns.
func (m *ResponseFilter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if err := next(ctx); err != nil {
		return err
	}
	if m.filter == nil {
		return nil
	}
	out, err := m.filter(ctx.Response)
	if err != nil {
		return err
	}
	ctx.Response = out
	return nil
}

// TrimResponse strips surrounding whitespace from the response.
func TrimResponse(response string) (string, error) {
	return strings.TrimSpace(response), nil
}
