package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWireFormat(t *testing.T) {
	t.Parallel()

	eventID := uuid.MustParse("b41f3deb-2b8d-4c3e-b4cc-97bbe514c464")
	correlationID := uuid.MustParse("c2038958-cd6a-4fbd-9ba5-e586a4db9fa1")
	occurredAt, err := time.Parse(time.RFC3339, "2021-04-01T16:03:52Z")
	require.NoError(t, err)

	event := Event{
		ID:            eventID,
		TransactionID: "92be1bd5-8598-4b47-9805-bd2cd1ea55fc",
		CorrelationID: &correlationID,
		Name:          NameDeckCreated,
		OccurredAt:    EventTime{occurredAt},
		Payload:       json.RawMessage(`{"deckName":"German"}`),
	}

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	want := `{
		"eventId": "b41f3deb-2b8d-4c3e-b4cc-97bbe514c464",
		"transactionId": "92be1bd5-8598-4b47-9805-bd2cd1ea55fc",
		"correlationId": "c2038958-cd6a-4fbd-9ba5-e586a4db9fa1",
		"type": "deck-created",
		"occurredAt": "2021-04-01T16:03:52Z",
		"payload": {"deckName": "German"}
	}`
	assert.JSONEq(t, want, string(raw))
}

func TestEventWireFormatNullCorrelation(t *testing.T) {
	t.Parallel()

	event, err := NewDeckCreated("external-batch-17", nil, DeckCreatedPayload{
		DeckID:   uuid.New(),
		UserID:   uuid.New(),
		DeckName: "German",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// correlationId is present and explicitly null when there is no causal
	// predecessor; the topic never appears in the envelope.
	assert.Equal(t, "null", string(decoded["correlationId"]))
	assert.NotContains(t, decoded, "Topic")
	assert.NotContains(t, decoded, "topic")
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	correlationID := uuid.New()
	original, err := NewCardDisabled(
		uuid.New().String(), &correlationID,
		CardDisabledPayload{CardID: uuid.New(), DeckID: uuid.New()})
	require.NoError(t, err)

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.TransactionID, decoded.TransactionID)
	assert.Equal(t, original.CorrelationID, decoded.CorrelationID)
	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.OccurredAt.Time, decoded.OccurredAt.Time)

	var payload CardDisabledPayload
	require.NoError(t, decoded.UnmarshalPayload(&payload))

	var originalPayload CardDisabledPayload
	require.NoError(t, original.UnmarshalPayload(&originalPayload))
	assert.Equal(t, originalPayload, payload)
}

func TestEventTimeSecondPrecision(t *testing.T) {
	t.Parallel()

	now := Now()
	assert.Zero(t, now.Nanosecond(), "wire timestamps carry second precision")

	raw, err := json.Marshal(now)
	require.NoError(t, err)
	assert.Regexp(t, `^"\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z"$`, string(raw))
}

func TestEventTimeRejectsOtherLayouts(t *testing.T) {
	t.Parallel()

	var ts EventTime
	err := json.Unmarshal([]byte(`"2021-04-01T16:03:52.123Z"`), &ts)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`"2021-04-01T16:03:52+02:00"`), &ts)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`"2021-04-01T16:03:52Z"`), &ts))
}

func TestNewConstructorsTargetChangeDataTopic(t *testing.T) {
	t.Parallel()

	deckCreated, err := NewDeckCreated("tx", nil, DeckCreatedPayload{})
	require.NoError(t, err)
	deckDisabled, err := NewDeckDisabled("tx", nil, DeckDisabledPayload{})
	require.NoError(t, err)
	cardCreated, err := NewCardCreated("tx", nil, CardCreatedPayload{})
	require.NoError(t, err)
	cardDisabled, err := NewCardDisabled("tx", nil, CardDisabledPayload{})
	require.NoError(t, err)

	for _, event := range []Event{deckCreated, deckDisabled, cardCreated, cardDisabled} {
		assert.Equal(t, TopicDeckCards, event.Topic)
		assert.NotEqual(t, uuid.Nil, event.ID)
	}

	names := []string{deckCreated.Name, deckDisabled.Name, cardCreated.Name, cardDisabled.Name}
	assert.Equal(t,
		[]string{NameDeckCreated, NameDeckDisabled, NameCardCreated, NameCardDisabled},
		names)
}

func TestNewRejectsUnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := New(TopicDeckCards, NameDeckCreated, "tx", nil, func() {})
	require.Error(t, err)
}

func TestInMemoryEmitterDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEmitter(nil)

	var got []string
	emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, event Event) error {
		got = append(got, "first:"+event.Name)
		return nil
	}))
	emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, event Event) error {
		got = append(got, "second:"+event.Name)
		return nil
	}))

	event, err := NewDeckCreated("tx", nil, DeckCreatedPayload{})
	require.NoError(t, err)
	require.NoError(t, emitter.Emit(context.Background(), event))

	assert.Equal(t, []string{"first:deck-created", "second:deck-created"}, got)
}

func TestInMemoryEmitterReturnsFirstErrorButDeliversToAll(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEmitter(nil)
	firstErr := fmt.Errorf("first handler failed")

	var secondCalled bool
	emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, event Event) error {
		return firstErr
	}))
	emitter.RegisterHandler(HandlerFunc(func(ctx context.Context, event Event) error {
		secondCalled = true
		return fmt.Errorf("second handler failed")
	}))

	event, err := NewCardCreated("tx", nil, CardCreatedPayload{})
	require.NoError(t, err)

	err = emitter.Emit(context.Background(), event)
	require.ErrorIs(t, err, firstErr)
	assert.True(t, secondCalled)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	recorder := &Recorder{}
	event, err := NewDeckDisabled("tx", nil, DeckDisabledPayload{})
	require.NoError(t, err)

	require.NoError(t, recorder.Emit(context.Background(), event))
	require.Len(t, recorder.Events(), 1)
	assert.Equal(t, event.ID, recorder.Events()[0].ID)

	recorder.Reset()
	assert.Empty(t, recorder.Events())
}
