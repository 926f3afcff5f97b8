package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/olimci/guffipedia/pkg/words"
)

const maxBody = 32 << 20

// HTTP fetches rows as a JSON array from URL.
type HTTP struct {
	URL    string
	Client *http.Client
	// Timeout bounds each attempt. Zero means no limit beyond ctx.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failure.
	Retries int
	// Backoff builds the retry schedule. Defaults to exponential backoff.
	Backoff func() backoff.BackOff
	// Notify is called before each retry.
	Notify func(err error, wait time.Duration)
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = time.Duration(0)
	return b
}

func (h *HTTP) Fetch(ctx context.Context) ([]words.Row, error) {
	newB := h.Backoff
	if newB == nil {
		newB = newBackoff
	}
	b := backoff.WithContext(backoff.WithMaxRetries(newB(), uint64(max(h.Retries, 0))), ctx)

	var rows []words.Row
	op := func() error {
		var err error
		rows, err = h.fetch(ctx)
		return err
	}

	var notify backoff.Notify
	if h.Notify != nil {
		notify = h.Notify
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return rows, nil
}

func (h *HTTP) fetch(ctx context.Context) ([]words.Row, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("fetch rows: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("fetch rows: %w: %s", ErrStatus, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}

	rows, err := words.DecodeRows(body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return rows, nil
}
