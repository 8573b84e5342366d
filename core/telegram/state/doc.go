// Package state keeps per-chat conversation sessions in memory. Sessions are
// lost on restart.
package state
