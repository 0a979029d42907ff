// Package transmission provides the transmission download client
// backend.
//
// Transmission has no stable Go API worth taking a dependency on for
// the three calls this tool needs, so the backend shells out to the
// transmission-remote CLI the same way the bot always has. Command
// execution sits behind an Executor interface so tests can assert the
// exact argv and feed canned output without a daemon running.
package transmission
