package dialog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnFromRequest_MapsSlotsAndNulls(t *testing.T) {
	raw := `{
		"sessionState": {
			"intent": {
				"name": "DiningSuggestionsIntent",
				"slots": {
					"Location": {"value": {"interpretedValue": "New York"}},
					"Cuisine":  {"value": {"interpretedValue": "Italian"}},
					"Date":     null,
					"Email":    {"value": null}
				}
			}
		}
	}`

	var req HookRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	turn := TurnFromRequest(req)
	assert.Equal(t, IntentDiningSuggestions, turn.Intent)
	assert.Equal(t, "New York", turn.Slots.Value(SlotLocation))
	assert.Equal(t, "Italian", turn.Slots.Value(SlotCuisine))
	assert.False(t, turn.Slots.Present(SlotDate), "null slot maps to empty")
	assert.False(t, turn.Slots.Present(SlotEmail), "null value maps to empty")
	assert.False(t, turn.Slots.Present(SlotDiningTime), "absent key maps to empty")
}

func TestResponseFromAction_Close(t *testing.T) {
	resp := ResponseFromAction(IntentGreeting, DialogAction{
		Type:    ActionClose,
		State:   StateFulfilled,
		Message: "Hi there!",
	})

	assert.Equal(t, "Close", resp.SessionState.DialogAction.Type)
	assert.Equal(t, "GreetingIntent", resp.SessionState.Intent.Name)
	assert.Equal(t, "Fulfilled", resp.SessionState.Intent.State)
	assert.Nil(t, resp.SessionState.Intent.Slots, "terminal response carries no slots")
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, WireMessage{ContentType: "PlainText", Content: "Hi there!"}, resp.Messages[0])
}

func TestResponseFromAction_ElicitSlot(t *testing.T) {
	slots := Slots{Location: &SlotValue{Interpreted: "Boston"}}

	resp := ResponseFromAction(IntentDiningSuggestions, DialogAction{
		Type:         ActionElicitSlot,
		SlotToElicit: SlotLocation,
		State:        StateInProgress,
		Message:      "Sorry, we only serve New York at the moment. Please enter New York as your location.",
		Slots:        slots,
	})

	assert.Equal(t, "ElicitSlot", resp.SessionState.DialogAction.Type)
	assert.Equal(t, "Location", resp.SessionState.DialogAction.SlotToElicit)
	assert.Equal(t, "InProgress", resp.SessionState.Intent.State)

	wire := resp.SessionState.Intent.Slots
	require.NotNil(t, wire["Location"])
	assert.Equal(t, "Boston", wire["Location"].Value.Interpreted)
	// Empty slots still appear as keys so the recognizer keeps its shape.
	require.Contains(t, wire, "Date")
	assert.Nil(t, wire["Date"])
}

func TestResponseFromAction_Delegate(t *testing.T) {
	resp := ResponseFromAction(IntentDiningSuggestions, DialogAction{
		Type:  ActionDelegate,
		State: StateInProgress,
		Slots: Slots{Cuisine: &SlotValue{Interpreted: "Thai"}},
	})

	assert.Equal(t, "Delegate", resp.SessionState.DialogAction.Type)
	assert.Empty(t, resp.Messages)
	require.NotNil(t, resp.SessionState.Intent.Slots["Cuisine"])
	assert.Equal(t, "Thai", resp.SessionState.Intent.Slots["Cuisine"].Value.Interpreted)
}

func TestWire_RoundTrip(t *testing.T) {
	in := Turn{
		Intent: IntentDiningSuggestions,
		Slots: Slots{
			Location: &SlotValue{Interpreted: "New York"},
			Cuisine:  &SlotValue{Interpreted: "Japanese"},
		},
	}

	resp := ResponseFromAction(in.Intent, DialogAction{
		Type:  ActionDelegate,
		State: StateInProgress,
		Slots: in.Slots,
	})
	out := TurnFromRequest(HookRequest{SessionState: resp.SessionState})

	assert.Equal(t, in, out)
}
