package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks that all required fields are set and values are valid.
func (c *ExchangeConfig) Validate() error {
	if c.Exchange.Port < 1 || c.Exchange.Port > 65535 {
		return fmt.Errorf("exchange.port must be between 1 and 65535, got %d", c.Exchange.Port)
	}
	if c.Exchange.ExpectedAgents < 1 {
		return errors.New("exchange.expected_agents must be >= 1")
	}
	if c.Exchange.BarrierTimeout < 0 {
		return errors.New("exchange.barrier_timeout must be >= 0")
	}

	if c.Inventory.Count < 1 {
		return errors.New("inventory.count must be >= 1")
	}
	if c.Inventory.MinPrice < 1 {
		return errors.New("inventory.min_price must be >= 1")
	}
	if c.Inventory.MaxPrice < c.Inventory.MinPrice {
		return fmt.Errorf("inventory.min_price (%d) cannot exceed max_price (%d)", c.Inventory.MinPrice, c.Inventory.MaxPrice)
	}

	switch c.Journal.Driver {
	case JournalNone:
	case JournalSQLite:
		if c.Journal.SQLitePath == "" {
			return errors.New("journal.sqlite_path is required for the sqlite driver")
		}
	case JournalPostgres:
		if err := c.Journal.Postgres.validate("journal.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("journal.driver must be none, sqlite or postgres, got %q", c.Journal.Driver)
	}
	if c.Journal.BatchSize < 1 {
		return errors.New("journal.batch_size must be >= 1")
	}
	if c.Journal.BufferSize < 1 {
		return errors.New("journal.buffer_size must be >= 1")
	}

	if c.Monitor.Enabled && (c.Monitor.Port < 1 || c.Monitor.Port > 65535) {
		return fmt.Errorf("monitor.port must be between 1 and 65535, got %d", c.Monitor.Port)
	}

	return c.Log.validate()
}

// Validate checks that all required fields are set and values are valid.
func (c *AgentConfig) Validate() error {
	if c.Agent.ID == "" {
		return errors.New("agent.id is required")
	}
	if c.Agent.PeerID == "" {
		return errors.New("agent.peer_id is required when agent.id is not 1 or 2")
	}
	if c.Agent.PeerID == c.Agent.ID {
		return fmt.Errorf("agent.peer_id must differ from agent.id (%s)", c.Agent.ID)
	}

	if _, _, err := net.SplitHostPort(c.Exchange.Addr); err != nil {
		return fmt.Errorf("exchange.addr: %w", err)
	}
	if c.Peer.Listen == "" {
		return errors.New("peer.listen is required")
	}
	if c.Peer.PeerAddr == "" {
		return errors.New("peer.peer_addr is required")
	}
	if c.Peer.Listen == c.Peer.PeerAddr {
		return fmt.Errorf("peer.listen and peer.peer_addr are both %s", c.Peer.Listen)
	}
	if c.Peer.ReadTimeout <= 0 {
		return errors.New("peer.read_timeout must be > 0")
	}
	if c.Peer.IdleTimeout < c.Peer.ReadTimeout {
		return fmt.Errorf("peer.idle_timeout (%s) cannot be shorter than read_timeout (%s)", c.Peer.IdleTimeout, c.Peer.ReadTimeout)
	}

	if c.Trading.Balance < 0 {
		return errors.New("trading.balance must be >= 0")
	}
	if c.Trading.Rounds < 1 {
		return errors.New("trading.rounds must be >= 1")
	}
	if c.Trading.ScalpTimeout <= 0 {
		return errors.New("trading.scalp_timeout must be > 0")
	}

	return c.Log.validate()
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level)
	}
}
