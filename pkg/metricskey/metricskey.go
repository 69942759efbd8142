package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	StatsRunsCompleted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_completed",
		Help:         "stats_runs_completed provides total runs that exhausted the iteration budget",
		RequiredTags: []string{"model"},
	}

	StatsRunsAborted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_runs_aborted",
		Help:         "stats_runs_aborted provides total runs aborted by an error",
		RequiredTags: []string{"model", "kind"},
	}

	StatsIterations = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_iterations",
		Help:         "stats_iterations provides total completed loop iterations",
		RequiredTags: []string{"model"},
	}

	StatsModelCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_succeeded",
		Help:         "stats_model_calls_succeeded provides total model calls succeeded",
		RequiredTags: []string{"model"},
	}

	StatsModelCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_failed",
		Help:         "stats_model_calls_failed provides total model calls failed",
		RequiredTags: []string{"model"},
	}

	StatsModelCallsTimedOut = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_model_calls_timed_out",
		Help:         "stats_model_calls_timed_out provides total model calls abandoned after the deadline",
		RequiredTags: []string{"model"},
	}

	StatsResponseParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_response_parse_errors",
		Help:         "stats_response_parse_errors provides total malformed model responses",
		RequiredTags: []string{"model"},
	}

	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides total bytes sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMBytesReceived = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_received",
		Help:         "stats_llm_bytes_received provides total bytes received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides total input tokens sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides total output tokens received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMTotalTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_total_tokens",
		Help:         "stats_llm_total_tokens provides total tokens sent and received from LLM",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides total tool calls not found",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsRepeated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_repeated",
		Help:         "stats_tool_calls_repeated provides total tool calls repeated with the same arguments in one run",
		RequiredTags: []string{"tool"},
	}
)

// Perf
var (
	PerfRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_run",
		Help:         "perf_run provides duration of orchestrator run",
		RequiredTags: []string{"model"},
	}

	PerfModelCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_model_call",
		Help:         "perf_model_call provides duration of model call",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfModelCall,
	&PerfRun,
	&PerfToolCall,
	&StatsIterations,
	&StatsLLMBytesReceived,
	&StatsLLMBytesSent,
	&StatsLLMInputTokens,
	&StatsLLMOutputTokens,
	&StatsLLMTotalTokens,
	&StatsModelCallsFailed,
	&StatsModelCallsSucceeded,
	&StatsModelCallsTimedOut,
	&StatsResponseParseErrors,
	&StatsRunsAborted,
	&StatsRunsCompleted,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsRepeated,
	&StatsToolCallsSucceeded,
}
