package invoices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/config"
	"ticketing/pkg/logger"
	"ticketing/pkg/metrics"

	"github.com/IBM/sarama"
)

// Consumer drains invoice requests and mails them. Each worker is its own
// group member, so partitions are split between them.
type Consumer struct {
	groups          []sarama.ConsumerGroup
	topics          []string
	deadLetter      sarama.SyncProducer
	deadLetterTopic string
	sender          *Sender
	maxRetries      int
	backoff         time.Duration
	logger          *logger.Logger
}

func NewConsumer(cfg config.KafkaConfig, sender *Sender) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.MaxProcessingTime = 5 * time.Minute
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	c := &Consumer{
		topics:          []string{cfg.InvoiceTopic},
		deadLetterTopic: cfg.DeadLetterTopic,
		sender:          sender,
		maxRetries:      cfg.MaxRetries,
		backoff:         cfg.RetryBackoff,
		logger:          logger.GetDefault().WithComponent("invoice-consumer"),
	}

	deadLetter, err := sarama.NewSyncProducer(cfg.Brokers, saramaProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create dead-letter producer: %w", err)
	}
	c.deadLetter = deadLetter

	for i := 0; i < max(cfg.ConsumerCount, 1); i++ {
		group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
		c.groups = append(c.groups, group)
	}
	return c, nil
}

// Run consumes until ctx is cancelled or the consumer is closed.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("Starting invoice consumers", "workers", len(c.groups), "topics", c.topics)

	var wg sync.WaitGroup
	for i, group := range c.groups {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for err := range group.Errors() {
				c.logger.Error("Consumer group error", "worker", i, "error", err)
			}
		}()
		go func() {
			defer wg.Done()
			c.consume(ctx, group, i)
		}()
	}
	wg.Wait()
	c.logger.Info("Invoice consumers stopped")
}

func (c *Consumer) consume(ctx context.Context, group sarama.ConsumerGroup, workerID int) {
	handler := &groupHandler{consumer: c, workerID: workerID}
	for ctx.Err() == nil {
		err := group.Consume(ctx, c.topics, handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}
		if err != nil {
			c.logger.Error("Consume failed", "worker", workerID, "error", err)
		} else if !handler.stalled.Swap(false) {
			continue
		}
		select {
		case <-time.After(backoffDelay(c.backoff, 0)):
		case <-ctx.Done():
		}
	}
}

func (c *Consumer) Close() error {
	var errs []error
	for _, group := range c.groups {
		if err := group.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer group: %w", err))
		}
	}
	if c.deadLetter != nil {
		if err := c.deadLetter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close dead-letter producer: %w", err))
		}
	}
	return errors.Join(errs...)
}

// process handles one message. A nil return means the offset may be marked:
// the invoice went out, can never go out, or is parked on the dead-letter
// topic.
func (c *Consumer) process(ctx context.Context, msg *sarama.ConsumerMessage) error {
	req, err := ParseRequest(msg.Value)
	if err != nil {
		c.logger.WarnContext(ctx, "Dropping unreadable invoice request",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	err = withRetry(ctx, c.maxRetries, c.backoff, func(ctx context.Context) error {
		return c.sender.Send(ctx, req)
	})
	metrics.TrackInvoice(err == nil)
	if err == nil {
		return nil
	}

	c.logger.LogDeliveryFailure(ctx, req.TicketID.String(), req.PaymentID.String(), err)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Retrying will not make the rows appear
		return nil
	}
	if ctx.Err() != nil {
		// Shutting down; the next session picks it up again
		return err
	}
	if dlqErr := c.publishDeadLetter(msg, err); dlqErr != nil {
		return errors.Join(err, dlqErr)
	}
	c.logger.WarnContext(ctx, "Invoice request moved to dead-letter topic",
		"payment_id", req.PaymentID.String(),
		"topic", c.deadLetterTopic,
	)
	return nil
}

func (c *Consumer) publishDeadLetter(msg *sarama.ConsumerMessage, cause error) error {
	headers := []sarama.RecordHeader{
		{Key: []byte("source_topic"), Value: []byte(msg.Topic)},
		{Key: []byte("source_partition"), Value: []byte(strconv.FormatInt(int64(msg.Partition), 10))},
		{Key: []byte("source_offset"), Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		{Key: []byte("error"), Value: []byte(cause.Error())},
	}
	_, _, err := c.deadLetter.SendMessage(&sarama.ProducerMessage{
		Topic:   c.deadLetterTopic,
		Key:     sarama.ByteEncoder(msg.Key),
		Value:   sarama.ByteEncoder(msg.Value),
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("failed to publish dead letter: %w", err)
	}
	return nil
}

type groupHandler struct {
	consumer *Consumer
	workerID int
	stalled  atomic.Bool
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.logger.Debug("Consumer group session started", "worker", h.workerID)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.consumer.logger.Debug("Consumer group session ended", "worker", h.workerID)
	return nil
}

// ConsumeClaim marks offsets strictly in order. A message that could be
// neither sent nor parked ends the session before anything after it is
// marked, so the next session starts again from it.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.consumer.process(session.Context(), msg); err != nil {
				h.stalled.Store(true)
				return fmt.Errorf("invoice request %s/%d/%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
