// Package server implements the server side of the robot navigation protocol.
//
// The server performs the following steps:
// 	1. Listens on a TCP address, optionally capping the number of connections served at once.
// 	2. On each accepted connection it assigns a session id, registers the session in the
// 	   session store and starts a handler in its own goroutine.
// 	3. The handler authenticates the robot, steers it to the origin and collects the secret
// 	   (see package handler and package session). Every read and write carries a deadline.
// 	4. When the handler returns, the session is removed from the store and both directions
// 	   of the connection are closed. Close failures are logged and otherwise ignored.
// 	5. Cancelling the context stops accepting, interrupts blocked reads and waits for the
// 	   in-flight sessions to unwind.
//
// Sessions share nothing but the store and the metrics counters, both safe for
// concurrent use. An optional HTTP endpoint exposes /healthz and a JSON /metrics
// document combining the counters with the live phase breakdown from the store.
package server
