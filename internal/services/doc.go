// Package services contains HTTP clients for the backend content API.
//
// The backend is a Directus instance. Two clients cover its surface:
//
//   - [AuthService] : REST auth endpoints (password login, refresh-token
//     exchange, logout, profile, registration, password reset)
//   - [ContentService] : GraphQL catalog query and binary asset downloads
//
// Both follow an authenticate-retry protocol: an unauthorized response
// triggers exactly one token refresh through the injected [TokenSource],
// then one retry. A failed retry surfaces to the caller; there are no
// further retries against a possibly dead session.
//
// Errors never leave this package as raw transport failures. Remote
// rejections are wrapped in [APIError] carrying the status code and the
// Directus error list, and every failure is first handed to the configured
// [ErrorObserver] so permanent credential invalidation is detected even off
// the happy path.
package services
