package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"assessment-rag/internal/config"
	"assessment-rag/internal/helper"
	"assessment-rag/internal/models"
	"assessment-rag/internal/parser"
)

// Recommender answers a recommendation query.
type Recommender interface {
	Recommend(ctx context.Context, query string) (*models.Answer, error)
}

// Request is the message body consumed from the request queue.
type Request struct {
	RequestID string `json:"request_id,omitempty"`
	Query     string `json:"query"`
	// Format selects the reply shape: "typed" (default) or "simple".
	Format string `json:"format,omitempty"`
}

// Response is published to the request's reply-to queue.
type Response struct {
	RequestID              string              `json:"request_id"`
	Status                 string              `json:"status"`
	RecommendedAssessments []parser.TypedItem  `json:"recommended_assessments,omitempty"`
	Assessments            []parser.SimpleItem `json:"assessments,omitempty"`
	RawResponse            string              `json:"raw_response,omitempty"`
	Error                  string              `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"

	FormatTyped  = "typed"
	FormatSimple = "simple"
)

// Handle decodes one request body, runs it and builds the reply. It never
// fails; problems are reported in the response.
func Handle(ctx context.Context, rec Recommender, body []byte) Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Response{RequestID: helper.NewRequestID(), Status: StatusError, Error: fmt.Sprintf("invalid request: %v", err)}
	}
	if req.RequestID == "" {
		req.RequestID = helper.NewRequestID()
	}
	resp := Response{RequestID: req.RequestID, Status: StatusOK}

	if strings.TrimSpace(req.Query) == "" {
		resp.Status, resp.Error = StatusError, models.ErrEmptyQuery.Error()
		return resp
	}
	ans, err := rec.Recommend(ctx, req.Query)
	if err != nil {
		resp.Status, resp.Error = StatusError, err.Error()
		return resp
	}

	switch req.Format {
	case FormatSimple:
		resp.Assessments = parser.SimpleItems(ans.Assessments)
		if raw, ok := ans.Fallback(); ok {
			resp.RawResponse = raw
		}
	default:
		resp.RecommendedAssessments = parser.TypedItems(ans.Assessments, parser.MaxRecommendations)
	}
	return resp
}

// Worker consumes recommendation requests from RabbitMQ and publishes replies
// to each message's reply-to queue.
type Worker struct {
	cfg     config.QueueConfig
	rec     Recommender
	timeout time.Duration
}

func NewWorker(cfg config.QueueConfig, rec Recommender, timeout time.Duration) *Worker {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Worker{cfg: cfg, rec: rec, timeout: timeout}
}

// Run starts cfg.Workers consumers sharing one connection and blocks until ctx
// is cancelled or a consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	if w.cfg.URL == "" {
		return fmt.Errorf("%w: queue.url is required", models.ErrConfig)
	}
	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %v", err)
	}
	defer conn.Close()

	g, ctx := errgroup.WithContext(ctx)
	for id := 1; id <= w.cfg.Workers; id++ {
		g.Go(func() error { return w.consume(ctx, conn, id) })
	}
	log.Info().Str("queue", w.cfg.Queue).Int("workers", w.cfg.Workers).Msg("Worker started")

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) consume(ctx context.Context, conn *amqp.Connection, id int) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %v", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		w.cfg.Queue, // queue name
		true,        // durable
		false,       // auto-delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %v", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %v", err)
	}

	msgs, err := ch.Consume(
		w.cfg.Queue, // queue name
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq messages: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			w.process(ctx, ch, msg, id)
		}
	}
}

func (w *Worker) process(ctx context.Context, ch *amqp.Channel, msg amqp.Delivery, id int) {
	msgCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		msgCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	resp := Handle(msgCtx, w.rec, msg.Body)
	log.Info().
		Int("worker", id).
		Str("request_id", resp.RequestID).
		Str("status", resp.Status).
		Dur("took", time.Since(start)).
		Msg("Processed recommendation request")

	if msg.ReplyTo != "" {
		body, err := json.Marshal(resp)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal reply")
		} else if err := ch.Publish("", msg.ReplyTo, false, false, amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID(msg, resp),
			Body:          body,
		}); err != nil {
			log.Error().Err(err).Str("reply_to", msg.ReplyTo).Msg("Failed to publish reply")
		}
	}

	if err := msg.Ack(false); err != nil {
		log.Error().Err(err).Msg("Failed to ack message")
	}
}

func correlationID(msg amqp.Delivery, resp Response) string {
	if msg.CorrelationId != "" {
		return msg.CorrelationId
	}
	return resp.RequestID
}
