// Package peer implements the Peer Scalping Channel.
//
// Each agent binds one UDP endpoint and pairs it with its peer's address.
// The listener:
//   - Answers SCALP requests from the agent's own cheapest holding at twice its price
//   - Accepts scalp deliveries and refusals for the agent's own outstanding request
//   - Ignores its own datagrams and drops malformed ones
//   - Stops on context cancellation or after an idle period with no processed message
//
// At most one scalp request is outstanding per agent. Its resolution is posted
// once on a single-slot Completions channel.
package peer
