package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"wallet/internal/model"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptSender_Send(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got model.Receipt
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Recipient != "ada@example.com" || got.Data["amount"] != "1,234.56" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	s := NewReceiptSender(producer, "wallet.receipts")
	err := s.Send(context.Background(), &model.Receipt{
		Key:       "20240101120000ABCDEFG",
		Recipient: "ada@example.com",
		Subject:   model.ReceiptDebitSubject,
		Template:  model.ReceiptDebitTemplate,
		Data:      map[string]string{"amount": "1,234.56"},
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestReceiptSender_SendFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	s := NewReceiptSender(producer, "wallet.receipts")
	err := s.Send(context.Background(), &model.Receipt{Key: "k"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, s.Close())
}

func TestReceiptSender_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	s := NewReceiptSender(producer, "wallet.receipts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, &model.Receipt{Key: "k"}), context.Canceled)
	require.NoError(t, s.Close())
}
