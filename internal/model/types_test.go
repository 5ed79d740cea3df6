package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewTradeEvent(t *testing.T) {
	session := uuid.New()

	a := NewTradeEvent(session, KindBuy, "10000", 250, 4000)
	b := NewTradeEvent(session, KindBuy, "10000", 250, 4000)

	if a.ID == uuid.Nil {
		t.Fatal("event ID should not be nil")
	}
	if a.ID == b.ID {
		t.Error("consecutive events should get distinct IDs")
	}
	if a.SessionID != session {
		t.Errorf("SessionID = %v, want %v", a.SessionID, session)
	}
	if a.At.IsZero() {
		t.Error("At should be set")
	}
	if a.Kind != KindBuy || a.TicketID != "10000" || a.Price != 250 || a.Balance != 4000 {
		t.Errorf("unexpected event fields: %+v", a)
	}
}

func TestAgentReport_HoldingsValue(t *testing.T) {
	tests := []struct {
		name     string
		holdings []Holding
		want     int
	}{
		{name: "empty", holdings: nil, want: 0},
		{name: "single", holdings: []Holding{{TicketID: "10000", Price: 200}}, want: 200},
		{
			name: "several",
			holdings: []Holding{
				{TicketID: "10000", Price: 200},
				{TicketID: "10003", Price: 350},
				{TicketID: "10007", Price: 400},
			},
			want: 950,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := AgentReport{Holdings: tt.holdings}
			if got := r.HoldingsValue(); got != tt.want {
				t.Errorf("HoldingsValue() = %d, want %d", got, tt.want)
			}
		})
	}
}
