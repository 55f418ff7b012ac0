package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Reconciliations.WithLabelValues("paypal", "success").Inc()
	m.Swept.Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reconciliations.WithLabelValues("paypal", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Swept))

	assert.Panics(t, func() { New(reg) }, "duplicate registration must panic")
}
