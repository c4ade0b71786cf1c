// Package cli provides the interactive gauth command-line client.
//
// It wires configuration, the local vault, the session store, the API
// transport and the router, then runs a REPL. The REPL is a thin shell over
// the router: "login" and "register" enter the corresponding pages, and the
// session guard decides whether the page is shown or the user is sent to the
// landing route instead.
//
// Commands:
//   - help           show available commands
//   - login          open the login page
//   - register       open the registration page
//   - logout         drop the session
//   - whoami         print the current identity
//   - home           go to the landing page
//   - exit | quit    leave the program
//
// A background watcher pings the API and flips the prompt between online
// and offline mode. Diagnostics go to the logger (stderr); the REPL only
// prints short user-facing notices.
package cli
