package config

import (
	"net"
	"strconv"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultExchangeHost     = "localhost"
	DefaultExchangePort     = 12345
	DefaultExpectedAgents   = 2
	DefaultWriteTimeout     = 5 * time.Second
	DefaultTicketCount      = 25
	DefaultFirstTicketID    = 10000
	DefaultMinPrice         = 200
	DefaultMaxPrice         = 400
	DefaultJournalDriver    = JournalNone
	DefaultSQLitePath       = "trades.db"
	DefaultJournalBatchSize = 100
	DefaultFlushInterval    = 1 * time.Second
	DefaultJournalBuffer    = 1000
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultMinConns         = 1
	DefaultMonitorPort      = 8080
	DefaultPingInterval     = 30 * time.Second
	DefaultLogLevel         = "info"

	DefaultDialTimeout     = 3 * time.Second
	DefaultReadTimeout     = 30 * time.Second
	DefaultPeerReadTimeout = 1 * time.Second
	DefaultPeerIdleTimeout = 180 * time.Second
	DefaultBalance         = 4000
	DefaultRounds          = 15
	DefaultScalpTimeout    = 10 * time.Second
	DefaultLinger          = 180 * time.Second
)

// ApplyDefaults fills unset exchange fields.
func (c *ExchangeConfig) ApplyDefaults() {
	// Session manager defaults
	if c.Exchange.Host == "" {
		c.Exchange.Host = DefaultExchangeHost
	}
	if c.Exchange.Port == 0 {
		c.Exchange.Port = DefaultExchangePort
	}
	if c.Exchange.ExpectedAgents == 0 {
		c.Exchange.ExpectedAgents = DefaultExpectedAgents
	}
	if c.Exchange.WriteTimeout == 0 {
		c.Exchange.WriteTimeout = DefaultWriteTimeout
	}

	// Inventory defaults
	if c.Inventory.Count == 0 {
		c.Inventory.Count = DefaultTicketCount
	}
	if c.Inventory.FirstID == 0 {
		c.Inventory.FirstID = DefaultFirstTicketID
	}
	if c.Inventory.MinPrice == 0 {
		c.Inventory.MinPrice = DefaultMinPrice
	}
	if c.Inventory.MaxPrice == 0 {
		c.Inventory.MaxPrice = DefaultMaxPrice
	}

	// Journal defaults
	if c.Journal.Driver == "" {
		c.Journal.Driver = DefaultJournalDriver
	}
	if c.Journal.Driver == JournalSQLite && c.Journal.SQLitePath == "" {
		c.Journal.SQLitePath = DefaultSQLitePath
	}
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultJournalBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultFlushInterval
	}
	if c.Journal.BufferSize == 0 {
		c.Journal.BufferSize = DefaultJournalBuffer
	}
	applyDBDefaults(&c.Journal.Postgres)

	// Monitor defaults
	if c.Monitor.Port == 0 {
		c.Monitor.Port = DefaultMonitorPort
	}
	if c.Monitor.PingInterval == 0 {
		c.Monitor.PingInterval = DefaultPingInterval
	}

	applyLogDefaults(&c.Log)
}

// ApplyDefaults fills unset agent fields, deriving peer addresses from the
// exchange port for the reference pair of numeric agent IDs.
func (c *AgentConfig) ApplyDefaults() {
	// Exchange client defaults
	if c.Exchange.Addr == "" {
		c.Exchange.Addr = net.JoinHostPort(DefaultExchangeHost, strconv.Itoa(DefaultExchangePort))
	}
	if c.Exchange.DialTimeout == 0 {
		c.Exchange.DialTimeout = DefaultDialTimeout
	}
	if c.Exchange.WriteTimeout == 0 {
		c.Exchange.WriteTimeout = DefaultWriteTimeout
	}
	if c.Exchange.ReadTimeout == 0 {
		c.Exchange.ReadTimeout = DefaultReadTimeout
	}

	// Peer defaults
	if c.Agent.PeerID == "" {
		c.Agent.PeerID = counterpart(c.Agent.ID)
	}
	host, port := splitExchangeAddr(c.Exchange.Addr)
	if c.Peer.Listen == "" {
		if n, err := strconv.Atoi(c.Agent.ID); err == nil && port > 0 {
			c.Peer.Listen = net.JoinHostPort(host, strconv.Itoa(PeerPortFor(port, n)))
		}
	}
	if c.Peer.PeerAddr == "" {
		if n, err := strconv.Atoi(c.Agent.PeerID); err == nil && port > 0 {
			c.Peer.PeerAddr = net.JoinHostPort(host, strconv.Itoa(PeerPortFor(port, n)))
		}
	}
	if c.Peer.ReadTimeout == 0 {
		c.Peer.ReadTimeout = DefaultPeerReadTimeout
	}
	if c.Peer.IdleTimeout == 0 {
		c.Peer.IdleTimeout = DefaultPeerIdleTimeout
	}

	// Trading defaults
	if c.Trading.Balance == 0 {
		c.Trading.Balance = DefaultBalance
	}
	if c.Trading.Rounds == 0 {
		c.Trading.Rounds = DefaultRounds
	}
	if c.Trading.ScalpTimeout == 0 {
		c.Trading.ScalpTimeout = DefaultScalpTimeout
	}
	if c.Trading.Linger == 0 {
		c.Trading.Linger = DefaultLinger
	}

	applyLogDefaults(&c.Log)
}

// PeerPortFor returns the UDP port agent n listens on: one past the
// exchange port, offset by the agent number.
func PeerPortFor(exchangePort, agent int) int {
	return exchangePort + 1 + agent
}

// counterpart pairs agent "1" with "2" and vice versa.
func counterpart(id string) string {
	switch id {
	case "1":
		return "2"
	case "2":
		return "1"
	default:
		return ""
	}
}

func splitExchangeAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return DefaultExchangeHost, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	if host == "" {
		host = DefaultExchangeHost
	}
	return host, port
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

func applyLogDefaults(l *LogConfig) {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
}
