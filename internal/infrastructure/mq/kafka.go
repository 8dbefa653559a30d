package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet/internal/config"
	"wallet/internal/model"

	"github.com/IBM/sarama"
)

// NewSyncProducer connects a producer that waits for every in-sync replica.
func NewSyncProducer(cfg *config.KafkaConfig) (sarama.SyncProducer, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// ReceiptSender publishes receipts as JSON, keyed by transaction ref so one
// transaction's receipts stay on one partition.
type ReceiptSender struct {
	producer sarama.SyncProducer
	topic    string
}

func NewReceiptSender(producer sarama.SyncProducer, topic string) *ReceiptSender {
	return &ReceiptSender{producer: producer, topic: topic}
}

func (s *ReceiptSender) Send(ctx context.Context, receipt *model.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(receipt.Key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("template"), Value: []byte(receipt.Template)},
		},
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish receipt %s: %w", receipt.Key, err)
	}
	return nil
}

func (s *ReceiptSender) Close() error {
	return s.producer.Close()
}
