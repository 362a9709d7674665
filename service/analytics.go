package service

import (
	"context"
	"errors"

	"github.com/layer-3/venmo/ports"
)

// MultiAnalytics tracks every event on each sink and joins their errors
type MultiAnalytics []ports.Analytics

func (m MultiAnalytics) Track(ctx context.Context, event string) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Track(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
