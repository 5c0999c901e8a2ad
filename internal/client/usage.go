package client

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// UsageRecorder reports copies in the background. The caller never waits
// for the server and failures are only logged.
type UsageRecorder struct {
	api     *API
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewUsageRecorder(api *API, timeout time.Duration) *UsageRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsageRecorder{api: api, timeout: timeout, now: time.Now}
}

// Record dispatches a RecordUse call for the prompt and returns at once
func (r *UsageRecorder) Record(s Session, promptID string) {
	at := r.now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if _, err := r.api.RecordUse(ctx, s, promptID, at); err != nil {
			log.Warn().Err(err).Str("prompt_id", promptID).Msg("failed to record prompt use")
		}
	}()
}

// Wait blocks until every dispatched report has finished
func (r *UsageRecorder) Wait() {
	r.wg.Wait()
}
