// Package stripe provides integration with the Stripe payment service,
// creating the hosted checkout sessions of the shop and verifying and
// dispatching its webhook events.
package stripe

import (
	"fmt"

	"github.com/google/uuid"
)

// Service provides the main business logic for Stripe operations. The only
// state it keeps is the set of webhook events already processed.
type Service struct {
	provider Provider
	config   *Config
	events   *EventStore
	locks    *LockManager
	notifier *OrderNotifier
	// newReferenceID returns the client reference attached to each session.
	newReferenceID func() string
}

// NewService creates a new Stripe service. The provider may be nil when the
// service only receives webhooks; session operations then fail with
// ErrNotConfigured.
func NewService(config *Config, provider Provider) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stripe config: %w", err)
	}
	return &Service{
		provider:       provider,
		config:         config,
		events:         NewEventStore(DefaultEventTTL),
		locks:          NewLockManager(),
		newReferenceID: uuid.NewString,
	}, nil
}

// SetNotifier sets the notifier used to tell the shop staff about paid and
// failed orders. A nil notifier disables the notifications.
func (s *Service) SetNotifier(notifier *OrderNotifier) {
	s.notifier = notifier
}

// Config returns the configuration of the service.
func (s *Service) Config() *Config {
	return s.config
}
