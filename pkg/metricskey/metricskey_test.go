package metricskey

import (
	"sort"
	"testing"

	"github.com/effective-security/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMetricsDefinitions(t *testing.T) {
	for _, m := range Metrics {
		assert.NotEmpty(t, m.Name, "Metric name should not be empty")
		assert.NotEmpty(t, m.Help, "Metric help text should not be empty")
		assert.NotEmpty(t, m.RequiredTags, "Metric should have required tags")
	}

	isSorted := sort.SliceIsSorted(Metrics, func(i, j int) bool {
		return Metrics[i].Name < Metrics[j].Name
	})
	assert.True(t, isSorted, "Metrics slice should be sorted by name")

	seen := make(map[string]bool)
	for _, m := range Metrics {
		assert.False(t, seen[m.Name], "Metric name should be unique: %s", m.Name)
		seen[m.Name] = true
	}

	t.Run("Model metrics have model tag", func(t *testing.T) {
		for _, m := range []*metrics.Describe{
			&PerfRun,
			&PerfModelCall,
			&StatsRunsCompleted,
			&StatsRunsAborted,
			&StatsIterations,
			&StatsModelCallsSucceeded,
			&StatsModelCallsFailed,
			&StatsModelCallsTimedOut,
			&StatsResponseParseErrors,
			&StatsLLMBytesSent,
			&StatsLLMBytesReceived,
		} {
			assert.Contains(t, m.RequiredTags, "model", "metric should have model tag: %s", m.Name)
			assert.Contains(t, Metrics, m)
		}
	})

	t.Run("Tool metrics have tool tag", func(t *testing.T) {
		for _, m := range []*metrics.Describe{
			&PerfToolCall,
			&StatsToolCallsSucceeded,
			&StatsToolCallsFailed,
			&StatsToolCallsNotFound,
			&StatsToolCallsRepeated,
		} {
			assert.Contains(t, m.RequiredTags, "tool", "metric should have tool tag: %s", m.Name)
			assert.Contains(t, Metrics, m)
		}
	})
}
