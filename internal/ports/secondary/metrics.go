package secondary

// MetricsRecorder defines the secondary port for operational counters.
type MetricsRecorder interface {
	// GateDecision counts a move or approval decision. Reason is "allowed" on success.
	GateDecision(op, reason string)

	// TransactionsRecorded counts transactions appended to ledgers.
	TransactionsRecorded(kind string, n int)

	// CommandFailed counts commands that failed for a reason other than a gate
	// or validation rejection.
	CommandFailed(op string)
}

// NopMetrics discards everything. Used by the CLI and in tests.
type NopMetrics struct{}

func (NopMetrics) GateDecision(string, string)       {}
func (NopMetrics) TransactionsRecorded(string, int) {}
func (NopMetrics) CommandFailed(string)             {}
