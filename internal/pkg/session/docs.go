// Package session implements the per-connection protocol state machine.
//
// A session performs the following steps:
// 	1. The robot sends its username; the server asks for a key index.
// 	2. The robot sends a key index into the shared secret table; the server answers with
// 	   its half of the login hash, computed from the username and the secret pair.
// 	3. The robot sends its half of the hash. On a match the server replies OK and orders
// 	   a first left turn; any mismatch ends the session with LOGIN FAILED.
// 	4. The server navigates the robot to the origin one command at a time, inferring
// 	   position and heading from the coordinates the robot reports (see package nav).
// 	5. At the origin the server asks for the secret. The robot sends it, the server
// 	   logs the robot out and the connection is closed.
//
// At any point the robot may announce RECHARGING. The current state is then suspended
// verbatim until FULL POWER arrives, and the transport deadline is extended meanwhile.
//
// Transitions are pure: Next takes a State and a parsed message and returns the next
// State with the replies to send. The connection loop owns the only copy of the State.
package session
