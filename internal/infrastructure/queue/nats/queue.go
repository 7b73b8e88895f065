package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/resilience"
)

const workerQueueGroup = "workers"

type Queue struct {
	conn              *nats.Conn
	collectSubject    string
	projectionSubject string
	executor          *resilience.Executor
	logger            *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

type Subjects struct {
	Collect    string
	Projection string
}

func New(url string, subjects Subjects) (*Queue, error) {
	return NewWithOptions(url, subjects, Options{})
}

func NewWithOptions(url string, subjects Subjects, options Options) (*Queue, error) {
	if subjects.Collect == "" || subjects.Projection == "" {
		return nil, fmt.Errorf("nats: collect and projection subjects are required")
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("weekly-issue"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:              conn,
		collectSubject:    subjects.Collect,
		projectionSubject: subjects.Projection,
		executor:          options.ResilienceExecutor,
		logger:            logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishCollectRequest(ctx context.Context, req domain.CollectRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal collect request: %w", err)
	}
	return q.publish(ctx, "nats.publish_collect", q.collectSubject, payload)
}

func (q *Queue) PublishProjection(ctx context.Context, batch domain.ProjectionBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return q.publish(ctx, "nats.publish_projection", q.projectionSubject, payload)
}

func (q *Queue) publish(ctx context.Context, operation, subject string, payload []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, operation, call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeCollectRequests blocks until ctx is done. Workers share one queue group.
func (q *Queue) SubscribeCollectRequests(ctx context.Context, handler func(context.Context, domain.CollectRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.collectSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		handleCollectMessage(ctx, q.logger, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func handleCollectMessage(ctx context.Context, logger *slog.Logger, data []byte, handler func(context.Context, domain.CollectRequest) error) {
	req, err := decodeCollectRequest(data)
	if err != nil {
		logger.Error("collect_request_rejected", "error", err)
		return
	}

	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := handler(handlerCtx, req); err != nil {
		logger.Error("collect_handler_failed", "week", req.Week, "companies", len(req.Companies), "error", err)
	}
}

// An empty payload is a valid "collect everything this week" trigger.
func decodeCollectRequest(data []byte) (domain.CollectRequest, error) {
	var req domain.CollectRequest
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.CollectRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode collect request", err)
	}
	return req, nil
}
