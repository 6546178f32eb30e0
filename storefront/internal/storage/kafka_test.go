package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/mocks"
	"ardelivero-storefront/storefront/internal/storage"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_PublishOrderEvent(t *testing.T) {
	tests := []struct {
		name      string
		writeErr  error
		wantError bool
	}{
		{name: "success"},
		{name: "broker_down", writeErr: assert.AnError, wantError: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			writer := mocks.NewMessageWriter(t)
			var sent []kafka.Message
			writer.On("WriteMessages", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message) }).
				Return(testCase.writeErr).Once()

			publisher := storage.NewKafkaPublisher(writer)
			event := domain.OrderEvent{
				Type:       domain.EventOrderPlaced,
				OrderID:    "o1",
				Total:      42.5,
				ItemCount:  3,
				OccurredAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
			}

			err := publisher.PublishOrderEvent(context.Background(), event)

			if testCase.wantError {
				assert.ErrorIs(t, err, assert.AnError)
				return
			}
			require.NoError(t, err)
			require.Len(t, sent, 1)
			assert.Equal(t, "o1", string(sent[0].Key))
			assert.Equal(t, domain.EventOrderPlaced, string(sent[0].Headers[0].Value))

			var decoded domain.OrderEvent
			require.NoError(t, json.Unmarshal(sent[0].Value, &decoded))
			assert.Equal(t, event, decoded)
		})
	}
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, storage.NopPublisher{}.PublishOrderEvent(context.Background(), domain.OrderEvent{}))
}
