// Package repositories provides the persistence layer over the local
// SQLite store.
//
// Each repository owns one table. Songs are replaced wholesale per sync
// generation, never patched; auth and users are singletons keyed by a fixed
// id; files hold best-effort downloaded note sheets keyed by the remote
// asset id. [WipeAll] clears every table in two tiers for forced logout.
package repositories
