package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementValidation("OB2", true, 0, 0)
		m.IncrementNormalized("OB2")
		m.IncrementDropped()
		m.IncrementConversion("ob2_to_ob3", nil)
		m.ObserveBatchDuration(time.Second)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCounters(t *testing.T) {
	m := New()

	m.IncrementValidation("OB2", true, 0, 1)
	m.IncrementValidation("", false, 2, 0)
	m.IncrementNormalized("OB3")
	m.IncrementDropped()
	m.IncrementConversion("ob2_to_ob3", nil)
	m.IncrementConversion("ob3_to_ob2", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("OB2", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("unknown", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Findings.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues("warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Normalized.WithLabelValues("OB3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("ob3_to_ob2", "error")))

	// Separate instances do not collide on registration.
	assert.NotPanics(t, func() { New() })
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.IncrementDropped()

	path := filepath.Join(t.TempDir(), "obkit.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "obkit_normalize_dropped_total 1")
}
