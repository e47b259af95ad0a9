// Package models defines the data model for the offline hymnal.
//
// Songs and their nested parts (verses, authors, melody notations, note sheet
// references, categories) mirror the shape the content API returns after
// flattening. Songs are immutable once synced: a resync replaces the whole
// catalog rather than patching individual records.
//
// Session, User and Preferences are local singletons. Playlists are the only
// user-owned collection and may reference song ids that no longer exist after
// a resync; readers must tolerate missing lookups.
package models
