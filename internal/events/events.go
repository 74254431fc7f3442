// Package events defines the domain event envelope, the topics events
// travel on, and the emitter abstraction that decouples lifecycle
// operations from the transport publishing their change notifications.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logical topics. The command topic carries inbound lifecycle requests; the
// change-data topics carry notifications consumed by other bounded contexts.
const (
	// TopicDeckCardsCommands carries create-deck, clone-deck, override-card
	// and clone-card requests.
	TopicDeckCardsCommands = "cmd.decks-cards.0"

	// TopicDeckCards carries deck/card change-data notifications.
	TopicDeckCards = "cdc.decks-cards.0"

	// TopicUsers carries user change-data consumed to gate deck creation.
	TopicUsers = "cdc.users.0"
)

// Outbound event names.
const (
	NameDeckCreated  = "deck-created"
	NameDeckDisabled = "deck-disabled"
	NameCardCreated  = "card-created"
	NameCardDisabled = "card-disabled"
)

// timeLayout is the wire format for event timestamps: RFC 3339 seconds with
// a literal Z, matching every other service on the bus.
const timeLayout = "2006-01-02T15:04:05Z"

// EventTime is a timestamp carrying the bus wire format.
type EventTime struct {
	time.Time
}

// Now returns the current UTC time truncated to the wire precision.
func Now() EventTime {
	return EventTime{time.Now().UTC().Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler with the bus layout.
func (t EventTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(timeLayout))
}

// UnmarshalJSON implements json.Unmarshaler with the bus layout.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(timeLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// Event is a single domain event (or command) on the bus. CorrelationID
// links an outbound event to the transaction of the command that caused it;
// it is null for events with no causal predecessor.
type Event struct {
	ID            uuid.UUID       `json:"eventId"`
	TransactionID string          `json:"transactionId"`
	CorrelationID *uuid.UUID      `json:"correlationId"`
	Name          string          `json:"type"`
	OccurredAt    EventTime       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`

	// Topic is the logical partition the event is published on. It travels
	// as transport metadata, not in the serialized envelope.
	Topic string `json:"-"`
}

// New builds an event envelope with a fresh event ID and the current
// timestamp, serializing the payload. Returns an error only if the payload
// cannot be serialized.
func New(topic, name, transactionID string, correlationID *uuid.UUID, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to serialize %s payload: %w", name, err)
	}
	return Event{
		ID:            uuid.New(),
		TransactionID: transactionID,
		CorrelationID: correlationID,
		Name:          name,
		OccurredAt:    Now(),
		Payload:       raw,
		Topic:         topic,
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Payload DTOs for the events this service produces.

// DeckCreatedPayload announces a new deck on the change-data topic.
type DeckCreatedPayload struct {
	DeckID   uuid.UUID `json:"deckId"`
	UserID   uuid.UUID `json:"userId"`
	DeckName string    `json:"deckName"`
}

// DeckDisabledPayload announces a retired deck.
type DeckDisabledPayload struct {
	DeckID uuid.UUID `json:"deckId"`
	UserID uuid.UUID `json:"userId"`
}

// CardCreatedPayload announces a new card.
type CardCreatedPayload struct {
	CardID uuid.UUID `json:"cardId"`
	DeckID uuid.UUID `json:"deckId"`
}

// CardDisabledPayload announces a retired card.
type CardDisabledPayload struct {
	CardID uuid.UUID `json:"cardId"`
	DeckID uuid.UUID `json:"deckId"`
}

// NewDeckCreated builds a deck-created event.
func NewDeckCreated(
	transactionID string,
	correlationID *uuid.UUID,
	payload DeckCreatedPayload,
) (Event, error) {
	return New(TopicDeckCards, NameDeckCreated, transactionID, correlationID, payload)
}

// NewDeckDisabled builds a deck-disabled event.
func NewDeckDisabled(
	transactionID string,
	correlationID *uuid.UUID,
	payload DeckDisabledPayload,
) (Event, error) {
	return New(TopicDeckCards, NameDeckDisabled, transactionID, correlationID, payload)
}

// NewCardCreated builds a card-created event.
func NewCardCreated(
	transactionID string,
	correlationID *uuid.UUID,
	payload CardCreatedPayload,
) (Event, error) {
	return New(TopicDeckCards, NameCardCreated, transactionID, correlationID, payload)
}

// NewCardDisabled builds a card-disabled event.
func NewCardDisabled(
	transactionID string,
	correlationID *uuid.UUID,
	payload CardDisabledPayload,
) (Event, error) {
	return New(TopicDeckCards, NameCardDisabled, transactionID, correlationID, payload)
}
