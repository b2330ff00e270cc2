// Package cli provides the interactive NeuroFit command-line client.
//
// It wires configuration, the persisted session, the API client and the
// services into a REPL. On start it restores the previous session if the
// server still accepts it.
//
// Key features:
//   - Register / Login / Logout / Whoami
//   - Profile view and edit
//   - Today's workout and nutrition plan, generation and completion
//   - Conversation with the AI coach
//   - Blog: posts, likes, comments
//   - Weight progress log
//
// When the refresh credential is rejected the client clears the session and
// the REPL drops back to the logged-out state with a notice.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
