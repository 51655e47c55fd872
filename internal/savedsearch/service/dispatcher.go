package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rental_portal_backend/internal/events"
	"rental_portal_backend/platform/logger"
)

// dispatchConcurrency bounds how many searches are evaluated in parallel
// per incoming listing.
const dispatchConcurrency = 8

// Dispatcher fans a new listing out to all matching saved searches. For each
// match it publishes a SavedSearchMatched event which the notification
// module turns into an in-app alert and email.
type Dispatcher struct {
	svc      *Service
	eventBus events.Bus
	log      *logger.Logger
}

// NewDispatcher creates a dispatcher over the saved searches service.
func NewDispatcher(svc *Service, eventBus events.Bus, log *logger.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, eventBus: eventBus, log: log}
}

// RegisterHandlers subscribes the dispatcher to listing events.
func (d *Dispatcher) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.PropertyListed{}.EventName(), events.HandlerFunc(d.handlePropertyListed))
}

func (d *Dispatcher) handlePropertyListed(ctx context.Context, event events.Event) error {
	listed, ok := event.(events.PropertyListed)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	searches, err := d.svc.repo.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("load notifiable searches: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(dispatchConcurrency)

	matched := 0
	for _, search := range searches {
		if search.OwnerID == listed.OwnerID {
			continue
		}
		if !MatchesListing(search, listed) {
			continue
		}
		matched++

		group.Go(func() error {
			return d.eventBus.PublishSync(groupCtx, events.SavedSearchMatched{
				BaseEvent:  events.NewBaseEvent(),
				SearchID:   search.ID,
				OwnerID:    search.OwnerID,
				PropertyID: listed.PropertyID,
				SearchName: search.Name,
			})
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("dispatch saved search matches: %w", err)
	}

	if matched > 0 {
		d.log.Info("saved searches matched new listing", "propertyId", listed.PropertyID, "matches", matched)
	}
	return nil
}
