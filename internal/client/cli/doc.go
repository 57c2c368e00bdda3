// Package cli provides the interactive capgallery terminal client.
//
// It wires configuration, the backend client, the session probe and the two
// views (gallery and profile) behind a small REPL. Typical flow: open the
// gallery, log in or register when the gate shows the auth form, open the
// profile, select an image and post it.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// A background watcher re-probes the session at the configured interval.
package cli
