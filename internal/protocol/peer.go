package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Peer keywords.
const (
	CmdScalp    = "SCALP"
	RespNoMoney = "NOMONEY"
	SoldOutText = "Scalper is sold-out"

	frameSep = ":"
)

// Datagram is one framed peer message.
type Datagram struct {
	Sender string
	Body   string
}

// Encode renders the datagram payload.
func (d Datagram) Encode() []byte {
	return []byte(d.Sender + frameSep + d.Body)
}

// ParseDatagram splits a payload at the first ':'. Payloads without the
// separator are malformed.
func ParseDatagram(payload []byte) (Datagram, error) {
	sender, body, ok := strings.Cut(string(payload), frameSep)
	if !ok {
		return Datagram{}, fmt.Errorf("%w: missing sender delimiter", ErrMalformed)
	}
	return Datagram{Sender: sender, Body: strings.TrimSpace(body)}, nil
}

// PeerKind classifies a peer body.
type PeerKind int

const (
	PeerUnknown PeerKind = iota
	PeerScalp
	PeerOffer
	PeerNoMoney
	PeerSoldOut
)

func (k PeerKind) String() string {
	switch k {
	case PeerScalp:
		return "scalp"
	case PeerOffer:
		return "offer"
	case PeerNoMoney:
		return "nomoney"
	case PeerSoldOut:
		return "soldout"
	default:
		return "unknown"
	}
}

// PeerMessage is a decoded peer body.
type PeerMessage struct {
	Kind     PeerKind
	Balance  int    // PeerScalp
	TicketID string // PeerOffer
	Price    int    // PeerOffer
}

// ScalpBody builds the body of a scalp request.
func ScalpBody(balance int) string {
	return CmdScalp + " " + strconv.Itoa(balance)
}

// OfferBody builds the body of a scalp delivery.
func OfferBody(ticketID string, price int) string {
	return ticketID + " " + strconv.Itoa(price)
}

// ParsePeerBody classifies a body. Unrecognised bodies come back as
// PeerUnknown rather than an error.
func ParsePeerBody(body string) PeerMessage {
	body = strings.TrimSpace(body)
	if body == RespNoMoney {
		return PeerMessage{Kind: PeerNoMoney}
	}
	if body == SoldOutText {
		return PeerMessage{Kind: PeerSoldOut}
	}

	fields := strings.Fields(body)
	if len(fields) == 2 && fields[0] == CmdScalp {
		if balance, err := strconv.Atoi(fields[1]); err == nil && balance >= 0 {
			return PeerMessage{Kind: PeerScalp, Balance: balance}
		}
		return PeerMessage{Kind: PeerUnknown}
	}
	if len(fields) == 2 && isDigits(fields[0]) {
		if price, err := strconv.Atoi(fields[1]); err == nil && price > 0 {
			return PeerMessage{Kind: PeerOffer, TicketID: fields[0], Price: price}
		}
	}
	return PeerMessage{Kind: PeerUnknown}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
