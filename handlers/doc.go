// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP and websocket handlers for the vote-tally API.

# Handler Types

  - CandidateHandler: public candidate list and grouped results
  - AdminHandler: login check, vote changes and roster edits over REST
  - LiveHandler: websocket sessions for the public and admin pages

Errors map to statuses the same way everywhere: bad input and unconfirmed
removals are 400, a missing candidate is 404, store failures are 500 with a
short message for the admin. A write whose follow-up step failed (audit
entry, description, roster refresh) still succeeds and carries a warning.

# Live Sessions

Every websocket connection owns one livesync.Session. The server sends JSON
frames:

	{"type":"snapshot","snapshot":{...}}   full candidate list after any change
	{"type":"countdown","countdown":29}     seconds to the next full refresh
	{"type":"result","command":"vote",...}  answer to a command
	{"type":"error","command":"vote",...}   command failure

Clients send commands such as {"type":"refresh"}. Admin connections also
accept login, logout, vote, custom, add and remove. Each admin connection has
its own gate and its own vote cooldown; nothing but refresh, login and logout
is accepted before login.
*/
package handlers
