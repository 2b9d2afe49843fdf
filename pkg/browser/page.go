package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wppgo/pkg/bridge"
)

// pageAdapter implements bridge.Page over the session's Playwright page.
type pageAdapter struct {
	session *Session
}

func (p *pageAdapter) Evaluate(ctx context.Context, script string, arg any) (any, error) {
	page, err := p.page()
	if err != nil {
		return nil, err
	}
	p.session.UpdateLastUsed()

	return await(ctx, page, func() (any, error) {
		return page.Evaluate(script, arg)
	})
}

func (p *pageAdapter) WaitForPredicate(ctx context.Context, script string, arg any, opts bridge.WaitOptions) (any, error) {
	page, err := p.page()
	if err != nil {
		return nil, err
	}
	p.session.UpdateLastUsed()

	interval := opts.Interval
	if interval <= 0 {
		interval = bridge.DefaultPollInterval
	}
	wait := playwright.PageWaitForFunctionOptions{
		Polling: float64(interval.Milliseconds()),
		Timeout: playwright.Float(float64(opts.Timeout.Milliseconds())),
	}

	return await(ctx, page, func() (any, error) {
		handle, err := page.WaitForFunction(script, arg, wait)
		if err != nil {
			return nil, err
		}
		defer handle.Dispose()
		return handle.JSONValue()
	})
}

func (p *pageAdapter) page() (playwright.Page, error) {
	page := p.session.currentPage()
	if page == nil || page.IsClosed() {
		return nil, fmt.Errorf("session %s: %w", p.session.Name, bridge.ErrPageClosed)
	}
	return page, nil
}

type result struct {
	value any
	err   error
}

// await runs fn on its own goroutine so ctx can abandon a Playwright call
// that does not take a context. An abandoned call finishes in the background.
func await(ctx context.Context, page playwright.Page, fn func() (any, error)) (any, error) {
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, translateError(page, r.err)
		}
		return r.value, nil
	}
}

// translateError maps Playwright failures onto the bridge taxonomy.
func translateError(page playwright.Page, err error) error {
	switch {
	case errors.Is(err, playwright.ErrTargetClosed):
		return fmt.Errorf("%w: %v", bridge.ErrPageClosed, err)
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", bridge.ErrTimeout, err)
	}

	if page != nil && page.IsClosed() {
		return fmt.Errorf("%w: %v", bridge.ErrPageClosed, err)
	}

	var pwErr *playwright.Error
	if errors.As(err, &pwErr) {
		return &bridge.PageError{Name: pwErr.Name, Message: pwErr.Message, Stack: pwErr.Stack}
	}
	return err
}
