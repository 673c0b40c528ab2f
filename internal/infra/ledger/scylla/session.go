package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/gocql/gocql"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type Config struct {
	Hosts             []string
	Keyspace          string
	Username          string
	Password          string
	Timeout           time.Duration
	ReplicationFactor int
}

// NewSession creates the keyspace and ledger table if needed and returns a
// session bound to the keyspace.
func NewSession(ctx context.Context, cfg Config, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(cfg.Keyspace) {
		return nil, fmt.Errorf("invalid keyspace name: %s", cfg.Keyspace)
	}
	if cfg.ReplicationFactor <= 0 {
		cfg.ReplicationFactor = 1
	}

	base, err := cluster(cfg, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to scylla: %w", err)
	}
	defer base.Close()
	if err := ensureKeyspace(ctx, base, cfg); err != nil {
		return nil, err
	}

	session, err := cluster(cfg, cfg.Keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", cfg.Keyspace, err)
	}
	if err := ensureTables(ctx, session, cfg); err != nil {
		session.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", cfg.Hosts, "keyspace", cfg.Keyspace)
	}
	return session, nil
}

func cluster(cfg Config, keyspace string) *gocql.ClusterConfig {
	c := gocql.NewCluster(cfg.Hosts...)
	c.Keyspace = keyspace
	c.Consistency = gocql.Quorum
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
		c.ConnectTimeout = cfg.Timeout
	}
	if cfg.Username != "" {
		c.Authenticator = gocql.PasswordAuthenticator{Username: cfg.Username, Password: cfg.Password}
	}
	return c
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, cfg Config) error {
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		cfg.Keyspace, cfg.ReplicationFactor,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}
	return nil
}

func ensureTables(ctx context.Context, session *gocql.Session, cfg Config) error {
	ledger := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.inventory_ledger (
	room_id text,
	entry_id timeuuid,
	reference text,
	delta int,
	booked_slots int,
	available_slots int,
	reason text,
	at timestamp,
	PRIMARY KEY (room_id, entry_id)
) WITH CLUSTERING ORDER BY (entry_id DESC);`, cfg.Keyspace)
	if err := session.Query(ledger).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create inventory_ledger table: %w", err)
	}
	return nil
}
