// internal/fulfillment/worker.go
//
// Queue-fed recommendation worker. Each iteration drains one request from
// the work queue, searches the cuisine index, samples a handful of
// restaurants, hydrates them from the catalog, and emails the result.
// The message is acknowledged only after the email has been handed off,
// so a crash mid-iteration redelivers rather than loses the request.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	conciergeerrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/models"
	"dining-concierge/internal/queue"
)

// Outcome classifies one worker iteration.
type Outcome string

const (
	// OutcomeNoWork means the queue was empty.
	OutcomeNoWork Outcome = "no_work"
	// OutcomeDelivered means recommendations were emailed and the message acked.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeDroppedInvalid means the payload failed validation. The message
	// is left unacked and becomes visible again after the queue's deadline.
	OutcomeDroppedInvalid Outcome = "dropped_invalid"
	// OutcomeDroppedNoMatch means the index had no usable hits for the cuisine.
	OutcomeDroppedNoMatch Outcome = "dropped_no_match"
)

// Queue supplies work and accepts acknowledgments.
type Queue interface {
	Receive(ctx context.Context) (*queue.Message, error)
	Ack(ctx context.Context, msg *queue.Message) error
}

// Search resolves a cuisine to candidate restaurant ids.
type Search interface {
	FindByCuisine(ctx context.Context, cuisine string, limit int) ([]string, error)
}

// Store hydrates restaurant ids into full records.
type Store interface {
	GetByID(ctx context.Context, businessID string) (*models.RestaurantRecord, error)
}

// Mailer delivers the rendered recommendations.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config bounds one iteration.
type Config struct {
	// MaxCandidates caps the index query.
	MaxCandidates int
	// SampleSize is how many restaurants to recommend per request.
	SampleSize int
}

// requestSchema rejects payloads the worker cannot act on before any
// collaborator is touched.
const requestSchema = `{
	"type": "object",
	"required": ["cuisine", "email"],
	"properties": {
		"cuisine": {"type": "string", "minLength": 1},
		"email":   {"type": "string", "minLength": 1}
	}
}`

type Worker struct {
	queue  Queue
	search Search
	store  Store
	mailer Mailer
	config Config
	logger logger.Logger
	schema *gojsonschema.Schema
	rng    *rand.Rand
}

func NewWorker(q Queue, s Search, st Store, m Mailer, cfg Config, log logger.Logger) (*Worker, error) {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 50
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 3
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling request schema: %w", err)
	}

	return &Worker{
		queue:  q,
		search: s,
		store:  st,
		mailer: m,
		config: cfg,
		logger: log,
		schema: schema,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// ProcessOne runs a single iteration. Errors mean the iteration could not
// complete and the message, if any, was left unacked for redelivery.
func (w *Worker) ProcessOne(ctx context.Context) (Outcome, error) {
	start := time.Now()
	outcome, err := w.processOne(ctx)
	metrics.WorkerIterationDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		metrics.WorkerOutcomes.WithLabelValues(string(outcome)).Inc()
	}
	return outcome, err
}

func (w *Worker) processOne(ctx context.Context) (Outcome, error) {
	msg, err := w.queue.Receive(ctx)
	if err != nil {
		metrics.WorkerErrors.WithLabelValues("receive").Inc()
		return OutcomeNoWork, conciergeerrors.NewQueueReceiveFailedError(err)
	}
	if msg == nil {
		return OutcomeNoWork, nil
	}

	req, ok := w.parseRequest(msg)
	if !ok {
		return OutcomeDroppedInvalid, nil
	}

	log := w.logger.WithFields(map[string]interface{}{
		"message_id": msg.ID,
		"cuisine":    req.Cuisine,
	})

	ids, err := w.search.FindByCuisine(ctx, req.Cuisine, w.config.MaxCandidates)
	if err != nil {
		metrics.WorkerErrors.WithLabelValues("search").Inc()
		return OutcomeNoWork, conciergeerrors.NewSearchQueryFailedError(err)
	}
	if len(ids) == 0 {
		log.Warn("No restaurants indexed for cuisine, dropping request", nil)
		return OutcomeDroppedNoMatch, nil
	}

	restaurants, err := w.hydrate(ctx, w.sample(ids))
	if err != nil {
		return OutcomeNoWork, err
	}
	if len(restaurants) == 0 {
		log.Warn("All sampled restaurants missing from catalog, dropping request", nil)
		return OutcomeDroppedNoMatch, nil
	}

	subject, body := render(req, restaurants)
	if err := w.mailer.Send(ctx, req.Email, subject, body); err != nil {
		metrics.WorkerErrors.WithLabelValues("send").Inc()
		return OutcomeNoWork, conciergeerrors.NewEmailSendFailedError(err)
	}
	metrics.EmailsSent.Inc()

	if err := w.queue.Ack(ctx, msg); err != nil {
		metrics.WorkerErrors.WithLabelValues("ack").Inc()
		return OutcomeNoWork, conciergeerrors.NewQueueAckFailedError(err)
	}

	log.Info("Recommendations delivered", nil)
	return OutcomeDelivered, nil
}

func (w *Worker) parseRequest(msg *queue.Message) (models.RecommendationRequest, bool) {
	var req models.RecommendationRequest

	result, err := w.schema.Validate(gojsonschema.NewBytesLoader(msg.Body))
	if err != nil || !result.Valid() {
		w.logger.WithFields(map[string]interface{}{"message_id": msg.ID}).
			Warn("Discarding malformed request payload", nil)
		return req, false
	}

	if err := json.Unmarshal(msg.Body, &req); err != nil {
		w.logger.WithError(err).Warn("Discarding undecodable request payload", nil)
		return req, false
	}
	if strings.TrimSpace(req.Cuisine) == "" || strings.TrimSpace(req.Email) == "" {
		w.logger.Warn("Discarding request with blank cuisine or email", nil)
		return req, false
	}
	return req, true
}

// sample picks up to SampleSize ids uniformly without replacement.
func (w *Worker) sample(ids []string) []string {
	n := w.config.SampleSize
	if n > len(ids) {
		n = len(ids)
	}
	picked := make([]string, len(ids))
	copy(picked, ids)
	w.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}

// hydrate resolves ids against the catalog, skipping ids with no record.
func (w *Worker) hydrate(ctx context.Context, ids []string) ([]*models.RestaurantRecord, error) {
	out := make([]*models.RestaurantRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := w.store.GetByID(ctx, id)
		if err != nil {
			metrics.WorkerErrors.WithLabelValues("lookup").Inc()
			return nil, conciergeerrors.NewStoreLookupFailedError(id, err)
		}
		if rec == nil {
			w.logger.WithFields(map[string]interface{}{"business_id": id}).
				Warn("Indexed restaurant missing from catalog, skipping", nil)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
