// internal/dialog/models.go
package dialog

// Intent is the recognized purpose of one user turn. Values mirror the
// recognizer's intent names.
type Intent string

const (
	IntentGreeting          Intent = "GreetingIntent"
	IntentThankYou          Intent = "ThankYouIntent"
	IntentDiningSuggestions Intent = "DiningSuggestionsIntent"
)

// SlotName identifies one piece of information the dialog collects.
type SlotName string

const (
	SlotLocation       SlotName = "Location"
	SlotCuisine        SlotName = "Cuisine"
	SlotDate           SlotName = "Date"
	SlotDiningTime     SlotName = "DiningTime"
	SlotNumberOfPeople SlotName = "NumberOfPeople"
	SlotEmail          SlotName = "Email"
)

// RequiredSlots is the fixed elicitation order for a dining request.
var RequiredSlots = []SlotName{
	SlotLocation, SlotCuisine, SlotDate, SlotDiningTime, SlotNumberOfPeople, SlotEmail,
}

// SlotValue is one interpreted slot value. The recognizer may return a slot
// key whose value is null; that slot is empty, same as an absent one.
type SlotValue struct {
	Interpreted string `json:"interpretedValue"`
}

// Slots is the fixed slot record for a dining conversation. A nil or
// empty-valued field is an empty slot.
type Slots struct {
	Location       *SlotValue `json:"Location,omitempty"`
	Cuisine        *SlotValue `json:"Cuisine,omitempty"`
	Date           *SlotValue `json:"Date,omitempty"`
	DiningTime     *SlotValue `json:"DiningTime,omitempty"`
	NumberOfPeople *SlotValue `json:"NumberOfPeople,omitempty"`
	Email          *SlotValue `json:"Email,omitempty"`
}

// Value returns the interpreted value for a slot, or "" when the slot is
// empty.
func (s Slots) Value(name SlotName) string {
	v := s.field(name)
	if v == nil {
		return ""
	}
	return v.Interpreted
}

// Present reports whether the slot carries a non-empty interpreted value.
func (s Slots) Present(name SlotName) bool {
	return s.Value(name) != ""
}

// Cleared returns a copy of the slot set with the named slot emptied.
func (s Slots) Cleared(name SlotName) Slots {
	out := s
	switch name {
	case SlotLocation:
		out.Location = nil
	case SlotCuisine:
		out.Cuisine = nil
	case SlotDate:
		out.Date = nil
	case SlotDiningTime:
		out.DiningTime = nil
	case SlotNumberOfPeople:
		out.NumberOfPeople = nil
	case SlotEmail:
		out.Email = nil
	}
	return out
}

func (s Slots) field(name SlotName) *SlotValue {
	switch name {
	case SlotLocation:
		return s.Location
	case SlotCuisine:
		return s.Cuisine
	case SlotDate:
		return s.Date
	case SlotDiningTime:
		return s.DiningTime
	case SlotNumberOfPeople:
		return s.NumberOfPeople
	case SlotEmail:
		return s.Email
	default:
		return nil
	}
}

// Turn is one chat turn as handed over by the recognizer: the recognized
// intent and the accumulated slot set. The recognizer owns cross-turn
// continuity; nothing here is persisted.
type Turn struct {
	Intent Intent
	Slots  Slots
}

// DialogState tracks where the conversation stands. Fulfilled is terminal.
type DialogState string

const (
	StateInProgress DialogState = "InProgress"
	StateFulfilled  DialogState = "Fulfilled"
)

// ActionType is the kind of dialog action returned to the recognizer.
type ActionType string

const (
	ActionElicitSlot ActionType = "ElicitSlot"
	ActionDelegate   ActionType = "Delegate"
	ActionClose      ActionType = "Close"
)

// DialogAction is the engine's decision for one turn: prompt for a slot,
// hand control back to the recognizer, or end the conversation.
type DialogAction struct {
	Type         ActionType
	SlotToElicit SlotName
	Message      string
	Slots        Slots
	State        DialogState
}
