package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulstack/supportbot/pkg/models"
)

func TestNewKafkaPublisherValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  KafkaConfig
		wantErr string
	}{
		{
			name:    "no brokers",
			config:  KafkaConfig{Topic: "supportbot.events"},
			wantErr: "no brokers",
		},
		{
			name:    "no topic",
			config:  KafkaConfig{Brokers: []string{"localhost:9092"}},
			wantErr: "no topic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKafkaPublisher(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestKafkaPublisherClosedRejectsPublish(t *testing.T) {
	publisher, err := NewKafkaPublisher(DefaultKafkaConfig())
	require.NoError(t, err)

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close(), "closing twice is safe")

	err = publisher.Publish(context.Background(), models.BotEvent{ID: "evt-1"})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), models.BotEvent{}))
	assert.NoError(t, p.Close())
}

func TestDefaultKafkaConfig(t *testing.T) {
	config := DefaultKafkaConfig()
	assert.False(t, config.Enabled)
	assert.NotEmpty(t, config.Brokers)
	assert.Equal(t, "supportbot.events", config.Topic)
}
