// Package cache provides a persistent key/value boundary for serialized
// trie buffers, so that a query-serving process can start from a warm trie
// without re-running the bulk loader, and so that multiple query-serving
// processes can share one freshly-loaded trie.
package cache

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/quietdns/hosttrie/cmd"
	"github.com/quietdns/hosttrie/config"
	blog "github.com/quietdns/hosttrie/log"
)

// Config contains the configuration needed to act as a Redis client
// fronting the trie cache.
type Config struct {
	// TLS contains the configuration to speak TLS with Redis.
	TLS cmd.TLSConfig

	// Username used to authenticate to each Redis instance.
	Username string `validate:"required"`

	// PasswordFile is the path to a file holding the password used to
	// authenticate to each Redis instance.
	PasswordFile cmd.PasswordConfig `validate:"required"`

	// ShardAddrs is a map of shard names to IP address:port pairs. The
	// go-redis Ring client shards reads and writes across these servers
	// using a consistent hashing algorithm.
	ShardAddrs map[string]string `validate:"required_without=Lookups,min=1,dive,hostname_port"`

	// Lookups each entry contains a service and domain name used to
	// construct a SRV DNS query to discover Redis backends.
	Lookups []cmd.ServiceDomain `validate:"required_without=ShardAddrs,min=1,dive"`

	// LookupTimeout is the interval between periodic SRV lookups; each
	// lookup's own timeout is 90% of it. Defaults to 30 seconds if
	// unspecified.
	LookupTimeout config.Duration `validate:"-"`

	// LookupDNSAuthority, when set with Lookups, names the DNS server used
	// to resolve Redis backends instead of the system resolver.
	LookupDNSAuthority string `validate:"excluded_without=Lookups,omitempty,ip|hostname|hostname_port"`

	// Timeout is a per-request timeout applied to all Redis requests.
	Timeout config.Duration `validate:"-"`

	ReadOnly       bool
	RouteByLatency bool
	RouteRandomly  bool
	PoolFIFO       bool

	MaxRetries      int `validate:"min=0"`
	MinRetryBackoff config.Duration `validate:"-"`
	MaxRetryBackoff config.Duration `validate:"-"`

	DialTimeout  config.Duration `validate:"-"`
	ReadTimeout  config.Duration `validate:"-"`
	WriteTimeout config.Duration `validate:"-"`

	PoolSize     int `validate:"min=0"`
	MinIdleConns int `validate:"min=0"`
	MaxConnAge   config.Duration `validate:"-"`
	PoolTimeout  config.Duration `validate:"-"`
	IdleTimeout  config.Duration `validate:"-"`

	// CompressionThreshold is a serialized trie size, in bytes, in the same
	// sense as NewCompressingStore's threshold. NewRing does not read it,
	// and nothing in this package applies it to a Store.
	CompressionThreshold int `validate:"min=0"`
}

// NewRing returns a new Redis ring client.
func (c *Config) NewRing(stats prometheus.Registerer) (*redis.Ring, error) {
	password, err := c.PasswordFile.Pass()
	if err != nil {
		return nil, fmt.Errorf("loading password: %w", err)
	}

	tlsConfig, err := c.TLS.Load()
	if err != nil {
		return nil, fmt.Errorf("loading TLS config: %w", err)
	}

	ring := redis.NewRing(&redis.RingOptions{
		Addrs:     c.ShardAddrs,
		Username:  c.Username,
		Password:  password,
		TLSConfig: tlsConfig,

		MaxRetries:      c.MaxRetries,
		MinRetryBackoff: c.MinRetryBackoff.Duration,
		MaxRetryBackoff: c.MaxRetryBackoff.Duration,
		DialTimeout:     c.DialTimeout.Duration,
		ReadTimeout:     c.ReadTimeout.Duration,
		WriteTimeout:    c.WriteTimeout.Duration,

		PoolSize:        c.PoolSize,
		MinIdleConns:    c.MinIdleConns,
		ConnMaxLifetime: c.MaxConnAge.Duration,
		PoolTimeout:     c.PoolTimeout.Duration,
		ConnMaxIdleTime: c.IdleTimeout.Duration,
	})

	if stats != nil {
		MustRegisterClientMetricsCollector(ring, stats, c.ShardAddrs, c.Username)
	}

	return ring, nil
}

// NewRingWithPeriodicLookups returns a new Redis ring client whose shards
// are periodically refreshed via SRV lookups. An initial lookup populates
// the ring; if it fails, or resolves zero shards, an error is returned.
func (c *Config) NewRingWithPeriodicLookups(stats prometheus.Registerer, logger blog.Logger) (*redis.Ring, *Lookup, error) {
	ring, err := c.NewRing(stats)
	if err != nil {
		return nil, nil, err
	}

	lookup := NewLookup(c.Lookups, c.LookupDNSAuthority, c.LookupTimeout.Duration, ring, logger)

	return ring, lookup, nil
}
