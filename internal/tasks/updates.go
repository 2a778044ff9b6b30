package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	BuildProfile
	SearchCandidates
	RankCandidates
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case BuildProfile:
		return "build_profile"
	case SearchCandidates:
		return "search_candidates"
	case RankCandidates:
		return "rank_candidates"
	default:
		return ""
	}
}

// sendProgress sends update without blocking. A nil or full channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchProfileUpdate(timeRange string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching top tracks (%s)...", timeRange),
	}
}

func buildProfileUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildProfile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Building taste profile from %d tracks...", size),
		Data:    size,
	}
}

func searchArtistUpdate(step, total int, artist string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching %s...", step, total, artist),
	}
}

func rankCandidatesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RankCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Ranking %d candidates...", count),
		Data:    count,
	}
}
