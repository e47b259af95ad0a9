package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cantus/hymnal/internal/models"
	"github.com/cantus/hymnal/internal/repositories"
	"github.com/cantus/hymnal/internal/services"
	"github.com/cantus/hymnal/internal/shared"
	"github.com/charmbracelet/log"
)

// defaultBatchSize bounds concurrent asset downloads within one batch.
const defaultBatchSize = 5

// SyncResult summarizes one completed sync run.
type SyncResult struct {
	Songs           int       // Songs in the new catalog generation
	AssetsAttempted int       // Image note sheets referenced by the catalog
	AssetsStored    int       // Downloads that succeeded and were persisted
	AssetsFailed    int       // Downloads that failed (soft failures)
	CompletedAt     time.Time // When the run finished
}

// SyncEngine coordinates full catalog resyncs against the local store.
type SyncEngine struct {
	content   services.ContentAPI
	songs     *repositories.SongRepository
	files     *repositories.FileRepository
	logger    *log.Logger
	batchSize int

	running atomic.Bool

	mu       sync.Mutex
	lastSync time.Time
}

// SyncEngineOpts configures a [SyncEngine].
type SyncEngineOpts struct {
	Content   services.ContentAPI
	Songs     *repositories.SongRepository
	Files     *repositories.FileRepository
	Logger    *log.Logger
	BatchSize int
}

// NewSyncEngine creates a sync engine with the provided dependencies.
func NewSyncEngine(opts SyncEngineOpts) *SyncEngine {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	return &SyncEngine{
		content:   opts.Content,
		songs:     opts.Songs,
		files:     opts.Files,
		logger:    opts.Logger,
		batchSize: opts.BatchSize,
	}
}

// LastSync returns when the last successful run finished, zero if never.
func (e *SyncEngine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncAll performs a full resync: fetch the catalog, replace the song
// table, then download referenced note sheets with bounded concurrency.
//
// Catalog fetch or persist failures abort the run and leave previously
// cached songs untouched. Asset download failures are per-item and
// non-aborting; the run still reports success.
func (e *SyncEngine) SyncAll(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, shared.ErrSyncInProgress
	}
	defer e.running.Store(false)

	e.sendProgress(progress, fetchingSongsUpdate())

	catalog, err := e.content.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSyncFailed, err)
	}

	e.logger.Info("fetched catalog", "songs", len(catalog))
	e.sendProgress(progress, persistingSongsUpdate(len(catalog)))

	if err := e.songs.ReplaceAll(catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSyncFailed, err)
	}

	refs := collectImageRefs(catalog)
	result := &SyncResult{
		Songs:           len(catalog),
		AssetsAttempted: len(refs),
	}

	e.sendProgress(progress, downloadingAssetsUpdate(0, len(refs)))

	var (
		stored atomic.Int64
		failed atomic.Int64
	)

	// fixed-size batches, each fanned out concurrently and joined before
	// the next starts, bounding simultaneous outbound requests
	for start := 0; start < len(refs); start += e.batchSize {
		end := min(start+e.batchSize, len(refs))
		batch := refs[start:end]

		var wg sync.WaitGroup
		for _, ref := range batch {
			wg.Add(1)
			go func(ref models.NoteRef) {
				defer wg.Done()

				data, err := e.content.FetchAsset(ctx, ref.ID)
				if err != nil {
					e.logger.Warn("note sheet download failed", "asset", ref.ID, "error", err)
					failed.Add(1)
					return
				}

				blob := models.AssetBlob{ID: ref.ID, Data: data, Filename: ref.Filename}
				if err := e.files.Put(blob); err != nil {
					e.logger.Warn("note sheet store failed", "asset", ref.ID, "error", err)
					failed.Add(1)
					return
				}

				stored.Add(1)
			}(ref)
		}
		wg.Wait()

		e.sendProgress(progress, downloadingAssetsUpdate(end, len(refs)))
	}

	result.AssetsStored = int(stored.Load())
	result.AssetsFailed = int(failed.Load())
	result.CompletedAt = time.Now()

	e.mu.Lock()
	e.lastSync = result.CompletedAt
	e.mu.Unlock()

	e.sendProgress(progress, syncDoneUpdate(result.AssetsStored, result.AssetsAttempted))
	e.logger.Info("sync complete",
		"songs", result.Songs,
		"assets_stored", result.AssetsStored,
		"assets_failed", result.AssetsFailed,
	)

	return result, nil
}

// collectImageRefs gathers the unique image note refs across the catalog,
// preserving first-seen order.
func collectImageRefs(catalog []models.Song) []models.NoteRef {
	seen := make(map[string]struct{})
	var refs []models.NoteRef

	for i := range catalog {
		for _, ref := range catalog[i].ImageNoteRefs() {
			if _, dup := seen[ref.ID]; dup {
				continue
			}
			seen[ref.ID] = struct{}{}
			refs = append(refs, ref)
		}
	}

	return refs
}
