// Package client is the NeuroFit REST API client.
//
// # Overview
//
//  1. A transport contract (see the Client interface) covering auth, profile,
//     coach, workouts, nutrition, posts, comments and progress.
//  2. A concrete HTTP implementation (see HTTPClient). It attaches the session's
//     access credential as a bearer header, renews it once when a request
//     comes back 401, and replays that request with the new credential.
//
// # Renewal
//
// Do performs at most two attempts per request. A 401 on the first attempt
// leads to one renewal, then one replay. A 401 on the replay goes back to the
// caller. Concurrent requests that fail together share a single in-flight
// renewal. If the server rejects the refresh credential, the session is
// cleared, the reauth handler runs, and the caller gets ErrRenewalFailed.
//
// # Error Handling
//
// Non-2xx/3xx responses are returned as *APIError, which matches one of
// ErrUnauthorized, ErrValidation or ErrServer under errors.Is. Transport
// failures match ErrNetwork and are never retried.
package client
