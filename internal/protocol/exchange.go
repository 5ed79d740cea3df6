package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors
var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownCommand = errors.New("unknown command")
)

// Exchange keywords.
const (
	CmdBuy  = "BUY"
	CmdSell = "SELL"

	RespNoFunds = "NOFUNDS"
	RespSoldOut = "SOLDOUT"
	RespError   = "ERROR"
)

// RequestKind identifies an exchange request.
type RequestKind int

const (
	RequestBuy RequestKind = iota + 1
	RequestSell
)

// Request is a single agent-to-exchange message.
type Request struct {
	Kind     RequestKind
	Balance  int    // BUY only
	TicketID string // SELL only
}

// BuyRequest builds a BUY request.
func BuyRequest(balance int) Request {
	return Request{Kind: RequestBuy, Balance: balance}
}

// SellRequest builds a SELL request.
func SellRequest(ticketID string) Request {
	return Request{Kind: RequestSell, TicketID: ticketID}
}

// String renders the request without a line terminator.
func (r Request) String() string {
	switch r.Kind {
	case RequestBuy:
		return CmdBuy + " " + strconv.Itoa(r.Balance)
	case RequestSell:
		return CmdSell + " " + r.TicketID
	default:
		return ""
	}
}

// ParseRequest decodes one request line.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: empty request", ErrMalformed)
	}

	switch fields[0] {
	case CmdBuy:
		if len(fields) != 2 {
			return Request{}, fmt.Errorf("%w: BUY takes one argument", ErrMalformed)
		}
		balance, err := strconv.Atoi(fields[1])
		if err != nil || balance < 0 {
			return Request{}, fmt.Errorf("%w: invalid balance %q", ErrMalformed, fields[1])
		}
		return BuyRequest(balance), nil

	case CmdSell:
		if len(fields) != 2 {
			return Request{}, fmt.Errorf("%w: SELL takes one argument", ErrMalformed)
		}
		return SellRequest(fields[1]), nil

	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// ResponseKind identifies an exchange response.
type ResponseKind int

const (
	ResponseTicket ResponseKind = iota + 1
	ResponseNoFunds
	ResponseSoldOut
	ResponseError
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseTicket:
		return "ticket"
	case ResponseNoFunds:
		return RespNoFunds
	case ResponseSoldOut:
		return RespSoldOut
	case ResponseError:
		return RespError
	default:
		return "unknown"
	}
}

// Response is a single exchange-to-agent message.
type Response struct {
	Kind     ResponseKind
	TicketID string // ResponseTicket only
	Price    int    // ResponseTicket only
}

// TicketResponse builds a "<id> <price>" response.
func TicketResponse(id string, price int) Response {
	return Response{Kind: ResponseTicket, TicketID: id, Price: price}
}

// String renders the response without a line terminator.
func (r Response) String() string {
	switch r.Kind {
	case ResponseTicket:
		return r.TicketID + " " + strconv.Itoa(r.Price)
	case ResponseNoFunds:
		return RespNoFunds
	case ResponseSoldOut:
		return RespSoldOut
	default:
		return RespError
	}
}

// ParseResponse decodes one response line.
func ParseResponse(line string) (Response, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 1 && fields[0] == RespNoFunds:
		return Response{Kind: ResponseNoFunds}, nil
	case len(fields) == 1 && fields[0] == RespSoldOut:
		return Response{Kind: ResponseSoldOut}, nil
	case len(fields) == 1 && fields[0] == RespError:
		return Response{Kind: ResponseError}, nil
	case len(fields) == 2:
		price, err := strconv.Atoi(fields[1])
		if err != nil || price <= 0 {
			return Response{}, fmt.Errorf("%w: invalid price in %q", ErrMalformed, line)
		}
		return TicketResponse(fields[0], price), nil
	default:
		return Response{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
}
