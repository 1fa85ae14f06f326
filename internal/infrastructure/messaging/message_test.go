package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{Initial: time.Second, Max: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(4))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(20))
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("job-1", TypeCostRecalc, "org-1", &CostRecalcMessage{JobID: "job-1", OrgID: "org-1", Provider: "openai"})
	require.NoError(t, err)
	msg.SetMetadata("request_id", "req-1")
	msg.SetMetadata("trace_id", "")

	var job CostRecalcMessage
	require.NoError(t, msg.UnmarshalPayload(&job))
	assert.Equal(t, "openai", job.Provider)
	assert.Equal(t, "req-1", msg.GetMetadata("request_id"))
	_, ok := msg.Metadata["trace_id"]
	assert.False(t, ok)
}

func TestStreamNames(t *testing.T) {
	assert.Equal(t, "dlq:stream:billing:recalc", StreamCostRecalc.DLQStream())
	assert.Equal(t, ConsumerGroup("cg-billing-worker"), GroupName("", "billing-worker"))
	assert.Equal(t, ConsumerGroup("ac-billing-worker"), GroupName("ac", "billing-worker"))
}
