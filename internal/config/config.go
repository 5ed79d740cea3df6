package config

import "time"

// ExchangeConfig is the root configuration for the exchange.
type ExchangeConfig struct {
	Exchange  ExchangeListenConfig `yaml:"exchange"`
	Inventory InventoryConfig      `yaml:"inventory"`
	Journal   JournalConfig        `yaml:"journal"`
	Monitor   MonitorConfig        `yaml:"monitor"`
	Snapshot  SnapshotConfig       `yaml:"snapshot"`
	Log       LogConfig            `yaml:"log"`
}

// ExchangeListenConfig holds the session manager settings.
type ExchangeListenConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ExpectedAgents int           `yaml:"expected_agents"`
	Barrier        bool          `yaml:"barrier"`         // Hold every session until all agents connect
	BarrierTimeout time.Duration `yaml:"barrier_timeout"` // 0 = wait until the peer arrives or leaves
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// InventoryConfig controls ticket issuance.
type InventoryConfig struct {
	Count    int   `yaml:"count"`
	FirstID  int   `yaml:"first_id"`
	MinPrice int   `yaml:"min_price"`
	MaxPrice int   `yaml:"max_price"`
	Seed     int64 `yaml:"seed"` // 0 = seed from clock
}

// Journal drivers.
const (
	JournalNone     = "none"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// JournalConfig selects where trade events are recorded.
type JournalConfig struct {
	Driver        string        `yaml:"driver"` // "none", "sqlite" or "postgres"
	SQLitePath    string        `yaml:"sqlite_path"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MonitorConfig holds the HTTP monitor settings.
type MonitorConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Port         int           `yaml:"port"`
	PingInterval time.Duration `yaml:"ping_interval"` // WebSocket keepalive
}

// SnapshotConfig controls the final report export.
type SnapshotConfig struct {
	Path string `yaml:"path"` // Empty disables export
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Optional file, written in addition to stdout
}

// AgentConfig is the root configuration for a trading agent.
type AgentConfig struct {
	Agent    AgentIdentity  `yaml:"agent"`
	Exchange ExchangeDial   `yaml:"exchange"`
	Peer     PeerConfig     `yaml:"peer"`
	Trading  TradingConfig  `yaml:"trading"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

// AgentIdentity identifies this agent on the peer channel.
type AgentIdentity struct {
	ID     string `yaml:"id"`
	PeerID string `yaml:"peer_id"` // Derived for the reference pair "1"/"2" when empty
}

// ExchangeDial holds the exchange client settings.
type ExchangeDial struct {
	Addr         string        `yaml:"addr"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
}

// PeerConfig holds the peer scalping channel settings.
type PeerConfig struct {
	Listen      string        `yaml:"listen"`    // Derived from the exchange port when empty
	PeerAddr    string        `yaml:"peer_addr"` // Derived from the exchange port when empty
	ReadTimeout time.Duration `yaml:"read_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// TradingConfig holds the transaction engine settings.
type TradingConfig struct {
	Balance      int           `yaml:"balance"`
	Rounds       int           `yaml:"rounds"`
	ScalpTimeout time.Duration `yaml:"scalp_timeout"` // Max wait for a peer answer
	Linger       time.Duration `yaml:"linger"`        // Time to keep serving the peer after the last round
}
