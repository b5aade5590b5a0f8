package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchHistory Phase = iota
	Normalize
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchHistory:
		return "fetch_history"
	case Normalize:
		return "normalize"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchHistoryUpdate(service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Fetching listening history from %s...", service),
	}
}

func normalizeUpdate(fetched int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Normalize,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Normalizing %d records...", fetched),
	}
}

func completeUpdate(kept int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Sync complete: %d plays", kept),
	}
}
