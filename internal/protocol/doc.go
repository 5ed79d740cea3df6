// Package protocol encodes and decodes the two wire formats of the system.
//
// Exchange channel (TCP, one newline-terminated line per message):
//
//	BUY <balance>      ->  <ticketId> <price> | NOFUNDS | SOLDOUT
//	SELL <ticketId>    ->  <ticketId> <price> | ERROR
//
// Peer channel (UDP, one message per datagram):
//
//	<senderId>:<body>
//
// where body is SCALP <balance>, <ticketId> <price>, NOMONEY or a free-text
// sold-out notice.
package protocol
