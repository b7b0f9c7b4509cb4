// Package cli provides the interactive chat terminal client.
//
// It dials the server's WebSocket, prints every incoming event as a line and
// runs a REPL for the auth flows and chat:
//
//   - register / verify: create an account, confirming the mailed code
//   - login / logout
//   - reset / confirm: recover a password with a mailed code
//   - say <text>: post to the room (bare text works too once logged in)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
