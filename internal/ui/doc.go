// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the offline songbook:
//  1. [SongListView] : Browse and filter the cached catalog
//  2. [SongDetailView] : Read a song's full text
//  3. [SyncView] : Monitor real-time progress of a catalog resync
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the SyncEngine, providing non-blocking status reporting during resyncs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
