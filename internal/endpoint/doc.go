// Package endpoint selects the API base URL a client should talk to. A
// Profile names the environment variable that carries the execution mode,
// the variables consulted in production and the literal used everywhere
// else. Resolution is a pure function of its inputs; environment reading is
// kept in the Env sources so callers decide where the values come from.
package endpoint
