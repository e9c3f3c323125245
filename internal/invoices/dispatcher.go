package invoices

import (
	"context"
	"fmt"
	"time"

	"ticketing/internal/shared/config"
	"ticketing/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// KafkaDispatcher records the invoice and queues it for the consumer group.
// It satisfies settlement.Deliverer.
type KafkaDispatcher struct {
	invoices Repository
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

func NewKafkaDispatcher(cfg config.KafkaConfig, invoiceRepo Repository) (*KafkaDispatcher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaDispatcher(producer, cfg.InvoiceTopic, invoiceRepo), nil
}

func saramaProducerConfig(cfg config.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = cfg.MaxRetries
	saramaConfig.Producer.Timeout = cfg.ProducerTimeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	// Same payment, same partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

func newKafkaDispatcher(producer sarama.SyncProducer, topic string, invoiceRepo Repository) *KafkaDispatcher {
	return &KafkaDispatcher{
		invoices: invoiceRepo,
		producer: producer,
		topic:    topic,
		logger:   logger.GetDefault().WithComponent("invoices"),
	}
}

func (d *KafkaDispatcher) Deliver(ctx context.Context, ticketID, paymentID uuid.UUID) error {
	invoice, err := d.invoices.Create(ctx, paymentID)
	if err != nil {
		return err
	}
	req := &Request{
		InvoiceID:   invoice.ID,
		PaymentID:   paymentID,
		TicketID:    ticketID,
		RequestedAt: time.Now().UTC(),
	}
	payload, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal invoice request: %w", err)
	}

	partition, offset, err := d.producer.SendMessage(&sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(paymentID.String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("invoice_id"), Value: []byte(invoice.ID.String())},
			{Key: []byte("producer"), Value: []byte("ticketing-settlement")},
		},
		Timestamp: req.RequestedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish invoice request: %w", err)
	}

	d.logger.InfoContext(ctx, "Invoice request published",
		"topic", d.topic,
		"partition", partition,
		"offset", offset,
		"payment_id", paymentID.String(),
	)
	return nil
}

func (d *KafkaDispatcher) Close() error {
	if err := d.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// DirectDispatcher sends the invoice in-process. Used when Kafka is disabled.
type DirectDispatcher struct {
	invoices   Repository
	sender     *Sender
	maxRetries int
	backoff    time.Duration
}

func NewDirectDispatcher(invoiceRepo Repository, sender *Sender, maxRetries int, backoff time.Duration) *DirectDispatcher {
	return &DirectDispatcher{
		invoices:   invoiceRepo,
		sender:     sender,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (d *DirectDispatcher) Deliver(ctx context.Context, ticketID, paymentID uuid.UUID) error {
	invoice, err := d.invoices.Create(ctx, paymentID)
	if err != nil {
		return err
	}
	req := &Request{
		InvoiceID:   invoice.ID,
		PaymentID:   paymentID,
		TicketID:    ticketID,
		RequestedAt: time.Now().UTC(),
	}
	return withRetry(ctx, d.maxRetries, d.backoff, func(ctx context.Context) error {
		return d.sender.Send(ctx, req)
	})
}
