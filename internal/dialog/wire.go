// internal/dialog/wire.go
//
// Session-state JSON mapping for the recognizer webhook. The shapes mirror
// the recognizer's event format in both directions so the front end round
// trips its own session representation unchanged.
package dialog

// HookRequest is one recognizer event: the current intent and accumulated
// slot set.
type HookRequest struct {
	SessionState SessionState `json:"sessionState"`
}

type SessionState struct {
	DialogAction *WireDialogAction `json:"dialogAction,omitempty"`
	Intent       WireIntent        `json:"intent"`
}

type WireIntent struct {
	Name  string               `json:"name"`
	Slots map[string]*WireSlot `json:"slots,omitempty"`
	State string               `json:"state,omitempty"`
}

// WireSlot may arrive with a null value; that slot is empty.
type WireSlot struct {
	Value *SlotValue `json:"value,omitempty"`
}

type WireDialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

type WireMessage struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// HookResponse is what goes back to the recognizer for one turn.
type HookResponse struct {
	SessionState SessionState  `json:"sessionState"`
	Messages     []WireMessage `json:"messages,omitempty"`
}

// TurnFromRequest maps a recognizer event onto the fixed slot record. Slot
// keys with null values map to empty slots.
func TurnFromRequest(req HookRequest) Turn {
	slots := req.SessionState.Intent.Slots

	return Turn{
		Intent: Intent(req.SessionState.Intent.Name),
		Slots: Slots{
			Location:       wireSlotValue(slots, SlotLocation),
			Cuisine:        wireSlotValue(slots, SlotCuisine),
			Date:           wireSlotValue(slots, SlotDate),
			DiningTime:     wireSlotValue(slots, SlotDiningTime),
			NumberOfPeople: wireSlotValue(slots, SlotNumberOfPeople),
			Email:          wireSlotValue(slots, SlotEmail),
		},
	}
}

func wireSlotValue(slots map[string]*WireSlot, name SlotName) *SlotValue {
	slot, ok := slots[string(name)]
	if !ok || slot == nil || slot.Value == nil || slot.Value.Interpreted == "" {
		return nil
	}
	v := *slot.Value
	return &v
}

// ResponseFromAction maps a dialog action back onto the recognizer's
// session-state shape. Close drops the slot set, matching the recognizer's
// terminal-intent contract; the in-progress actions echo it back.
func ResponseFromAction(intent Intent, action DialogAction) HookResponse {
	resp := HookResponse{
		SessionState: SessionState{
			DialogAction: &WireDialogAction{Type: string(action.Type)},
			Intent: WireIntent{
				Name:  string(intent),
				State: string(action.State),
			},
		},
	}

	switch action.Type {
	case ActionClose:
		// Intent name and terminal state only.
	case ActionElicitSlot:
		resp.SessionState.DialogAction.SlotToElicit = string(action.SlotToElicit)
		resp.SessionState.Intent.Slots = slotsToWire(action.Slots)
	case ActionDelegate:
		resp.SessionState.Intent.Slots = slotsToWire(action.Slots)
	}

	if action.Message != "" {
		resp.Messages = []WireMessage{{
			ContentType: "PlainText",
			Content:     action.Message,
		}}
	}

	return resp
}

func slotsToWire(slots Slots) map[string]*WireSlot {
	out := make(map[string]*WireSlot, len(RequiredSlots))
	for _, name := range RequiredSlots {
		if !slots.Present(name) {
			out[string(name)] = nil
			continue
		}
		out[string(name)] = &WireSlot{Value: &SlotValue{Interpreted: slots.Value(name)}}
	}
	return out
}
