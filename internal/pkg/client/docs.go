// Package client implements a simulated robot for the navigation protocol.
//
// The client performs the following steps:
// 	1. Connect to the server.
// 	2. Send the username and wait for KEY REQUEST.
// 	3. Send the key index and wait for the server hash. The robot checks the hash against
// 	   its own copy of the secret table before answering, so an impostor server is detected.
// 	4. Send the client hash and wait for OK.
// 	5. Execute each MOVE, TURN LEFT and TURN RIGHT against its World and report the
// 	   resulting coordinates. A move into an obstacle leaves the robot where it was.
// 	6. On GET MESSAGE, hand over the secret and wait for LOGOUT.
//
// The robot can be told to announce RECHARGING followed by FULL POWER before every n-th
// report, which exercises the server's suspend and resume handling mid-session.
//
// Any error response from the server ends Run with a ServerError.
package client
