package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.EventPublished("AttributeUpdated")
	p.EventPublished("AttributeUpdated")
	p.EventPublished("ElementCreated")
	p.HandlerFailed("dispatcher")
	p.EdgesTracked(3)
	p.StackDepth("undo", 2)
	p.TransactionFinished("commit")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.events.WithLabelValues("AttributeUpdated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.events.WithLabelValues("ElementCreated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.failures.WithLabelValues("dispatcher")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.edges))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.stackDepth.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.transactions.WithLabelValues("commit")))
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	require.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop{}, OrNop(nil))

	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)
	assert.Same(t, p, OrNop(p))
}
