package broker

import (
	"sync"

	"github.com/google/uuid"

	"github.com/quantra-lab/contango/internal/types"
)

// NotificationHub fans broker notifications out to registered subscribers.
// Subscriptions are keyed by uuid so callers can unsubscribe independently.
type NotificationHub struct {
	mu            sync.RWMutex
	dataArrived   map[uuid.UUID]func(types.DataArrived)
	frontContract map[uuid.UUID]func(types.FrontContractFound)
	errors        map[uuid.UUID]func(types.BrokerError)
}

// NewNotificationHub creates an empty hub.
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		dataArrived:   make(map[uuid.UUID]func(types.DataArrived)),
		frontContract: make(map[uuid.UUID]func(types.FrontContractFound)),
		errors:        make(map[uuid.UUID]func(types.BrokerError)),
	}
}

// SubscribeDataArrived registers a data-arrived handler and returns its
// subscription token.
func (h *NotificationHub) SubscribeDataArrived(fn func(types.DataArrived)) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.dataArrived[id] = fn

	return id
}

// SubscribeFrontContract registers a front-contract handler.
func (h *NotificationHub) SubscribeFrontContract(fn func(types.FrontContractFound)) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frontContract[id] = fn

	return id
}

// SubscribeErrors registers an error handler.
func (h *NotificationHub) SubscribeErrors(fn func(types.BrokerError)) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors[id] = fn

	return id
}

// Unsubscribe removes the subscription with the given token from every
// notification kind.
func (h *NotificationHub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.dataArrived, id)
	delete(h.frontContract, id)
	delete(h.errors, id)
}

// PublishDataArrived delivers a data-arrived notification to all subscribers.
func (h *NotificationHub) PublishDataArrived(n types.DataArrived) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, fn := range h.dataArrived {
		fn(n)
	}
}

// PublishFrontContract delivers a front-contract notification.
func (h *NotificationHub) PublishFrontContract(n types.FrontContractFound) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, fn := range h.frontContract {
		fn(n)
	}
}

// PublishError delivers an error notification.
func (h *NotificationHub) PublishError(n types.BrokerError) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, fn := range h.errors {
		fn(n)
	}
}
