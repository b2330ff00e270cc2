// Package session owns the client's credentials.
//
// A Session holds the access and refresh credentials in memory and writes every
// change through to a Store, so the state survives restarts. It is created once
// and injected into the API client. Nothing else reads the credentials from
// global state.
//
// Lifecycle:
//
//	Save         after login or registration
//	UpdateAccess after a successful renewal
//	Clear        on logout or when renewal fails
package session
