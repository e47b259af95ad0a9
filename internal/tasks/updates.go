package tasks

import "fmt"

// Phase identifies one stage of a sync run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetchingSongs
	PhasePersistingSongs
	PhaseDownloadingAssets
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetchingSongs:
		return "fetching_songs"
	case PhasePersistingSongs:
		return "persisting_songs"
	case PhaseDownloadingAssets:
		return "downloading_assets"
	default:
		return ""
	}
}

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Current sync phase
	Current int    // Completed steps within this phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

func fetchingSongsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchingSongs,
		Message: "Fetching song catalog...",
	}
}

func persistingSongsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhasePersistingSongs,
		Total:   total,
		Message: fmt.Sprintf("Storing %d songs...", total),
	}
}

func downloadingAssetsUpdate(current, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDownloadingAssets,
		Current: current,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading note sheets...", current, total),
	}
}

func syncDoneUpdate(stored, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseIdle,
		Current: stored,
		Total:   total,
		Message: fmt.Sprintf("Sync complete: %d/%d note sheets stored", stored, total),
	}
}
