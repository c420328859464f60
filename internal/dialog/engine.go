// Package dialog decides, for each recognized turn, whether to prompt for a
// slot, delegate back to the recognizer, or close the conversation and hand
// a completed request to the work queue. The engine is stateless: each call
// reads its input turn and emits one action, so independent conversations
// can advance concurrently with no coordination.
package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/models"
)

const dateLayout = "2006-01-02"

// ErrMalformedDate marks a Date slot whose value does not parse as a
// calendar date. The recognizer owns syntactic validity of resolved slots,
// so this is an upstream contract violation, not a validation failure.
var ErrMalformedDate = errors.New("malformed date slot")

// acceptedLocations are the case-insensitive aliases of the one served city.
var acceptedLocations = []string{"new york", "ny", "new york city", "nyc"}

const (
	msgGreeting     = "Hi there! I'm your dining concierge. How can I help you today?"
	msgThankYou     = "You're welcome! Enjoy your meal!"
	msgUnrecognized = "Sorry, I didn't understand that."
	msgBadLocation  = "Sorry, we only serve New York at the moment. Please enter New York as your location."
	msgBadDate      = "Please enter a present or future date, not a date in the past."
	msgConfirmation = "Got it! I will find %s restaurants in %s for %s people at %s. " +
		"You are all set. I will send the suggestions to %s. Thank you!"
)

// Queue is the engine's only side-effect capability: placing one completed
// request payload on the work queue.
type Queue interface {
	Enqueue(ctx context.Context, body []byte) error
}

type Engine struct {
	queue  Queue
	logger logger.Logger
	now    func() time.Time
}

func NewEngine(q Queue, log logger.Logger) *Engine {
	return &Engine{
		queue:  q,
		logger: log.WithFields(map[string]interface{}{"component": "dialog"}),
		now:    time.Now,
	}
}

// Advance routes one turn to its dialog action. Routing is purely on intent;
// only DiningSuggestions runs the slot-validation pipeline. The returned
// error is either ErrMalformedDate or an enqueue failure.
func (e *Engine) Advance(ctx context.Context, turn Turn) (DialogAction, error) {
	var action DialogAction
	var err error

	switch turn.Intent {
	case IntentGreeting:
		action = e.close(turn, msgGreeting)
	case IntentThankYou:
		action = e.close(turn, msgThankYou)
	case IntentDiningSuggestions:
		action, err = e.handleDiningSuggestions(ctx, turn)
	default:
		action = e.close(turn, msgUnrecognized)
	}
	if err != nil {
		return DialogAction{}, err
	}

	metrics.DialogActions.WithLabelValues(string(action.Type), string(turn.Intent)).Inc()
	return action, nil
}

// handleDiningSuggestions runs the slot-validation pipeline in fixed order,
// short-circuiting on the first failure.
func (e *Engine) handleDiningSuggestions(ctx context.Context, turn Turn) (DialogAction, error) {
	slots := turn.Slots

	// 1. Location must be an alias of the served city. The rejected value
	// stays in the slot set; only Date is cleared on rejection.
	if slots.Present(SlotLocation) && !locationAccepted(slots.Value(SlotLocation)) {
		return e.elicit(turn, slots, SlotLocation, msgBadLocation), nil
	}

	// 2. Date must parse and be strictly in the future. A value that does
	// not parse aborts the turn; a past or same-day date is cleared and
	// re-elicited.
	if slots.Present(SlotDate) {
		raw := slots.Value(SlotDate)
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return DialogAction{}, fmt.Errorf("%w: %q: %v", ErrMalformedDate, raw, err)
		}
		if !date.After(e.today()) {
			return e.elicit(turn, slots.Cleared(SlotDate), SlotDate, msgBadDate), nil
		}
	}

	// 3. Anything still missing goes back to the recognizer.
	for _, name := range RequiredSlots {
		if !slots.Present(name) {
			return e.delegate(turn), nil
		}
	}

	// 4. Complete and valid: build the request, enqueue, close.
	req, err := models.NewRecommendationRequest(
		slots.Value(SlotLocation),
		slots.Value(SlotCuisine),
		slots.Value(SlotDate),
		slots.Value(SlotDiningTime),
		slots.Value(SlotNumberOfPeople),
		slots.Value(SlotEmail),
	)
	if err != nil {
		// Unreachable after the completeness check; kept as a guard on the
		// queue-side invariant that no partial request is ever enqueued.
		return e.delegate(turn), nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return DialogAction{}, fmt.Errorf("marshal recommendation request: %w", err)
	}
	if err := e.queue.Enqueue(ctx, body); err != nil {
		return DialogAction{}, fmt.Errorf("enqueue recommendation request: %w", err)
	}

	metrics.RequestsEnqueued.Inc()
	e.logger.Info("recommendation request enqueued", map[string]interface{}{
		"cuisine":  req.Cuisine,
		"location": req.Location,
	})

	msg := fmt.Sprintf(msgConfirmation,
		req.Cuisine, req.Location, req.NumberOfPeople, req.DiningTime, req.Email)
	return e.close(turn, msg), nil
}

func (e *Engine) close(turn Turn, message string) DialogAction {
	return DialogAction{
		Type:    ActionClose,
		Message: message,
		Slots:   turn.Slots,
		State:   StateFulfilled,
	}
}

func (e *Engine) delegate(turn Turn) DialogAction {
	return DialogAction{
		Type:  ActionDelegate,
		Slots: turn.Slots,
		State: StateInProgress,
	}
}

func (e *Engine) elicit(turn Turn, slots Slots, name SlotName, message string) DialogAction {
	return DialogAction{
		Type:         ActionElicitSlot,
		SlotToElicit: name,
		Message:      message,
		Slots:        slots,
		State:        StateInProgress,
	}
}

// today is midnight UTC of the current date, so "today or earlier" rejects
// same-day reservations.
func (e *Engine) today() time.Time {
	y, m, d := e.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func locationAccepted(location string) bool {
	normalized := strings.ToLower(strings.TrimSpace(location))
	for _, alias := range acceptedLocations {
		if normalized == alias {
			return true
		}
	}
	return false
}
