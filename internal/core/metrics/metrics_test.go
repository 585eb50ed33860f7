package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestMetrics_Reconstructions(t *testing.T) {
	m := New()

	m.ReconstructionFinished("ready")
	m.ReconstructionFinished("ready")
	m.ReconstructionFinished("incomplete")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconstructions.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconstructions.WithLabelValues("incomplete")))

	t.Log("✅ 重建计数测试通过")
}

func TestMetrics_FetchFailures(t *testing.T) {
	m := New()

	m.FetchFailed("header")
	m.FetchFailed("body")
	m.FetchFailed("body")

	expected := `
# HELP ultralight_fetch_failures_total Failed content fetches by block part.
# TYPE ultralight_fetch_failures_total counter
ultralight_fetch_failures_total{part="body"} 2
ultralight_fetch_failures_total{part="header"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"ultralight_fetch_failures_total"))
}

func TestMetrics_AddressBook(t *testing.T) {
	m := New()

	m.AddressBookRebuilt(3, 7)
	m.AddressBookRebuilt(2, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookRebuilds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookBuckets))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.bookPeers))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ReconstructionFinished("ready")
		m.FetchFailed("header")
		m.AddressBookRebuilt(1, 1)
	})
}

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	var m *Metrics

	app := fxtest.New(t,
		Module,
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, m)
	assert.NotNil(t, m.Registry())
}
