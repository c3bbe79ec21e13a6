package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quietdns/hosttrie/cmd"
	blog "github.com/quietdns/hosttrie/log"
)

// Lookup is a helper that keeps a *redis.Ring's shards up to date using SRV
// lookups, so that the cache tier can be scaled or rebalanced without a
// restart of the query-serving or loading processes.
type Lookup struct {
	srvLookups      []cmd.ServiceDomain
	updateFrequency time.Duration
	dnsAuthority    string

	ring   *redis.Ring
	logger blog.Logger
}

// NewLookup returns a new Lookup helper.
func NewLookup(srvLookups []cmd.ServiceDomain, dnsAuthority string, frequency time.Duration, ring *redis.Ring, logger blog.Logger) *Lookup {
	if frequency == 0 {
		frequency = 30 * time.Second
	}
	if dnsAuthority != "" {
		host, port, err := net.SplitHostPort(dnsAuthority)
		if err != nil {
			host = dnsAuthority
			port = "53"
		}
		dnsAuthority = net.JoinHostPort(host, port)
	}
	return &Lookup{
		srvLookups:      srvLookups,
		updateFrequency: frequency,
		dnsAuthority:    dnsAuthority,
		ring:            ring,
		logger:          logger,
	}
}

// getResolver returns a resolver that will be used to perform SRV lookups.
func (look *Lookup) getResolver() *net.Resolver {
	if look.dnsAuthority == "" {
		return net.DefaultResolver
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return net.Dial(network, look.dnsAuthority)
		},
	}
}

// handleDNSError logs non-temporary DNS errors and returns nil. Temporary
// DNS errors are returned as-is, so callers can retry on the next pass.
func (look *Lookup) handleDNSError(err error, lookupType string, srv cmd.ServiceDomain) error {
	if err == nil {
		return nil
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && (dnsErr.IsTimeout || dnsErr.IsTemporary) {
		return err
	}
	look.logger.Errf("resolving cache shards, %s lookup for %+v failed: %s", lookupType, srv, err)
	return nil
}

// shards performs SRV lookups for each configured service and returns the
// resolved shard addresses. An error is only returned if all lookups fail
// and zero shards are resolved.
func (look *Lookup) shards(ctx context.Context) (map[string]string, error) {
	resolver := look.getResolver()

	var tempErrs []error
	newAddrs := make(map[string]string)
	for _, srv := range look.srvLookups {
		_, targets, err := resolver.LookupSRV(ctx, srv.Service, "tcp", srv.Domain)
		err = look.handleDNSError(err, "SRV", srv)
		if err != nil {
			tempErrs = append(tempErrs, err)
			continue
		}

		for _, target := range targets {
			host := strings.TrimRight(target.Target, ".")
			if look.dnsAuthority != "" {
				hostAddrs, err := resolver.LookupHost(ctx, host)
				err = look.handleDNSError(err, "A/AAAA", srv)
				if err != nil {
					tempErrs = append(tempErrs, err)
					continue
				}
				if len(hostAddrs) == 0 {
					continue
				}
				host = hostAddrs[0]
			}
			addr := fmt.Sprintf("%s:%d", host, target.Port)
			newAddrs[addr] = addr
		}
	}
	if len(tempErrs) > 0 && len(newAddrs) == 0 {
		return nil, errors.Join(tempErrs...)
	}
	return newAddrs, nil
}

// shardsPeriodically performs SRV lookups on a timer and updates the ring's
// shards accordingly.
func (look *Lookup) shardsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(look.updateFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			timeoutCtx, cancel := context.WithTimeout(ctx, look.updateFrequency-look.updateFrequency/10)
			newAddrs, err := look.shards(timeoutCtx)
			cancel()
			if err != nil {
				look.logger.Warningf("resolving cache shards for %+v, temporary errors occurred: %s", look.srvLookups, err)
				continue
			}
			if len(newAddrs) == 0 {
				look.logger.Errf("0 cache shards were resolved for %+v", look.srvLookups)
				continue
			}
			look.ring.SetAddrs(newAddrs)

		case <-ctx.Done():
			return
		}
	}
}

// Start performs an initial SRV lookup, applies it to the ring, then
// launches a background goroutine to keep refreshing it.
func (look *Lookup) Start(ctx context.Context) {
	addrs, err := look.shards(ctx)
	if err != nil {
		panic(fmt.Sprintf("resolving cache shards for %+v, temporary errors occurred: %s", look.srvLookups, err))
	}
	if len(addrs) == 0 {
		panic(fmt.Sprintf("0 cache shards were resolved for %+v", look.srvLookups))
	}
	look.ring.SetAddrs(addrs)
	go look.shardsPeriodically(ctx)
}
