// Package tasks orchestrates the full catalog resync.
//
// # Sync
//
// [SyncEngine.SyncAll] runs four strictly sequential phases:
//
//  1. Fetch the approved catalog through the content gateway
//     (authenticate-retry applies).
//  2. Replace the local song table in one transaction (full-replace:
//     stale songs are dropped, nothing is diffed or merged).
//  3. Collect the image note sheet ids referenced by the new catalog.
//  4. Download assets in bounded batches; each batch fans out
//     concurrently and is joined before the next begins.
//
// A failure in phase 1 or 2 aborts the sync and leaves previously cached
// songs intact. Asset failures are per-item: logged, counted, and never
// abort the run, so a sync reports success even when some sheets are
// missing locally.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values on a caller-supplied channel.
// Sends use select with default so a slow consumer never blocks the sync.
//
// Concurrent SyncAll invocations are rejected with
// [shared.ErrSyncInProgress]; only one sync may run at a time.
package tasks
