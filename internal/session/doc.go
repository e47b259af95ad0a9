// Package session owns the authenticated session lifecycle.
//
// [Manager] holds the current token pair and profile, mirrors every
// mutation to the local store, and implements the token source the remote
// gateway refreshes through. It is constructed explicitly and injected
// into collaborators; there is no ambient global session state.
//
// [InvalidationHandler] is the single place that decides a session is
// unrecoverable. Every remote failure flows through it: when the backend
// has permanently rejected the credentials it wipes all local tables and
// forces re-authentication with a machine-readable reason.
package session
