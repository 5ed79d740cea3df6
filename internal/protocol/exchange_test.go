package protocol

import (
	"errors"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Request
		wantErr error
	}{
		{name: "buy", line: "BUY 4000", want: BuyRequest(4000)},
		{name: "buy zero", line: "BUY 0", want: BuyRequest(0)},
		{name: "buy with whitespace", line: "  BUY   250 \r", want: BuyRequest(250)},
		{name: "sell", line: "SELL 10003", want: SellRequest("10003")},
		{name: "empty", line: "", wantErr: ErrMalformed},
		{name: "buy missing balance", line: "BUY", wantErr: ErrMalformed},
		{name: "buy non numeric", line: "BUY lots", wantErr: ErrMalformed},
		{name: "buy negative", line: "BUY -5", wantErr: ErrMalformed},
		{name: "sell extra args", line: "SELL 1 2", wantErr: ErrMalformed},
		{name: "unknown", line: "REFUND 10000", wantErr: ErrUnknownCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRequest(%q) error = %v, want %v", tt.line, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest(%q) unexpected error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseRequest(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestRequest_String(t *testing.T) {
	if got := BuyRequest(250).String(); got != "BUY 250" {
		t.Errorf("BuyRequest(250) = %q, want %q", got, "BUY 250")
	}
	if got := SellRequest("10001").String(); got != "SELL 10001" {
		t.Errorf("SellRequest = %q, want %q", got, "SELL 10001")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		line    string
		want    Response
		wantErr bool
	}{
		{line: "10000 200", want: TicketResponse("10000", 200)},
		{line: "NOFUNDS", want: Response{Kind: ResponseNoFunds}},
		{line: "SOLDOUT", want: Response{Kind: ResponseSoldOut}},
		{line: "ERROR", want: Response{Kind: ResponseError}},
		{line: "10000 abc", wantErr: true},
		{line: "10000 0", wantErr: true},
		{line: "", wantErr: true},
		{line: "what is this", wantErr: true},
		{line: "MAYBE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseResponse(tt.line)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("ParseResponse(%q) error = %v, want ErrMalformed", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse(%q) unexpected error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseResponse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
			if got.String() != tt.line {
				t.Errorf("String() = %q, want %q", got.String(), tt.line)
			}
		})
	}
}
