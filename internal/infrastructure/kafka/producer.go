package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TheMukeshDev/quaiscan-dashboard/internal/domain"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/infrastructure/telemetry"
	"github.com/TheMukeshDev/quaiscan-dashboard/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes synced records to a single topic for downstream
// consumers. The dashboard itself never reads them back.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

type ProducerConfig struct {
	Brokers []string
	Topic   string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = "quaiscan-records"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 500 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: cfg.Topic}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishBlocks emits one message per block under a fresh trace so the
// publish batch is traceable without a request span to parent it.
func (p *Producer) PublishBlocks(ctx context.Context, blocks []domain.BlockRecord) error {
	if len(blocks) == 0 {
		return nil
	}
	ctx, span, traceIDHex := p.startPublishSpan(ctx, "syncer.publish_blocks")
	span.SetAttributes(attribute.Int("block.count", len(blocks)))
	defer span.End()

	messages := make([]kafka.Message, 0, len(blocks))
	for _, block := range blocks {
		payload, err := streaming.Encode(streaming.Message{
			Type:        streaming.MessageTypeBlock,
			TraceID:     traceIDHex,
			BlockNumber: block.BlockNumber,
			BlockHash:   block.Hash,
			TxCount:     block.TxCount,
			GasUsed:     block.GasUsed,
			Timestamp:   unixOrZero(block.Timestamp),
		})
		if err != nil {
			return p.fail(span, err)
		}
		headers := make([]kafka.Header, 0, 2)
		telemetry.InjectKafkaHeaders(ctx, &headers)
		messages = append(messages, kafka.Message{
			Topic:   p.topic,
			Key:     []byte(fmt.Sprintf("block:%d", block.BlockNumber)),
			Value:   payload,
			Headers: headers,
		})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return p.fail(span, err)
	}
	return nil
}

func (p *Producer) PublishTransactions(ctx context.Context, transactions []domain.TxRecord) error {
	if len(transactions) == 0 {
		return nil
	}
	ctx, span, traceIDHex := p.startPublishSpan(ctx, "syncer.publish_transactions")
	span.SetAttributes(attribute.Int("tx.count", len(transactions)))
	defer span.End()

	messages := make([]kafka.Message, 0, len(transactions))
	for _, tx := range transactions {
		msg := streaming.Message{
			Type:      streaming.MessageTypeTransaction,
			TraceID:   traceIDHex,
			TxHash:    tx.TxHash,
			From:      tx.From,
			To:        tx.To,
			Direction: string(tx.Direction),
			GasUsed:   tx.GasUsed,
			Timestamp: unixOrZero(tx.Timestamp),
		}
		if tx.Value != nil {
			msg.Value = tx.Value.String()
		}
		if tx.BlockNumber != nil {
			msg.BlockNumber = *tx.BlockNumber
		}
		payload, err := streaming.Encode(msg)
		if err != nil {
			return p.fail(span, err)
		}
		headers := make([]kafka.Header, 0, 2)
		telemetry.InjectKafkaHeaders(ctx, &headers)
		messages = append(messages, kafka.Message{
			Topic:   p.topic,
			Key:     []byte("tx:" + tx.TxHash),
			Value:   payload,
			Headers: headers,
		})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return p.fail(span, err)
	}
	return nil
}

func (p *Producer) PublishWallet(ctx context.Context, wallet domain.WalletRecord) error {
	ctx, span, traceIDHex := p.startPublishSpan(ctx, "syncer.publish_wallet")
	span.SetAttributes(attribute.String("wallet.address", wallet.Address))
	defer span.End()

	msg := streaming.Message{
		Type:      streaming.MessageTypeWallet,
		TraceID:   traceIDHex,
		Address:   wallet.Address,
		Timestamp: unixOrZero(wallet.LastUpdated),
	}
	if wallet.Balance != nil {
		msg.Balance = wallet.Balance.String()
	}
	payload, err := streaming.Encode(msg)
	if err != nil {
		return p.fail(span, err)
	}
	headers := make([]kafka.Header, 0, 2)
	telemetry.InjectKafkaHeaders(ctx, &headers)
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte("wallet:" + wallet.Address),
		Value:   payload,
		Headers: headers,
	}); err != nil {
		return p.fail(span, err)
	}
	return nil
}

func (p *Producer) startPublishSpan(ctx context.Context, name string) (context.Context, trace.Span, string) {
	traceIDHex := ""
	if traceID, hexID, ok := telemetry.NewTraceID(); ok {
		traceIDHex = hexID
		if spanCtx, ok := telemetry.NewSpanContext(traceID); ok {
			ctx = trace.ContextWithSpanContext(ctx, spanCtx)
		}
	}
	ctx, span := otel.Tracer("quaiscan/kafka").Start(ctx, name, trace.WithSpanKind(trace.SpanKindProducer))
	return ctx, span, traceIDHex
}

func (p *Producer) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
