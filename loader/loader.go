// Package loader bulk-loads a blocklist into a trie.Container. Per-line
// parsing and hostname normalization are independent and run across a
// worker pool; insertion into the Container happens on a single goroutine,
// since trie.Container.Add is not safe for concurrent use.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/nats-io/nuid"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/quietdns/hosttrie/allowlist"
	"github.com/quietdns/hosttrie/hostname"
	blog "github.com/quietdns/hosttrie/log"
	"github.com/quietdns/hosttrie/strictyaml"
	"github.com/quietdns/hosttrie/trie"
)

// Format selects how a blocklist source is parsed.
type Format int

const (
	// FormatLines treats the source as one hostname per line, ignoring
	// blank lines and lines starting with '#'.
	FormatLines Format = iota
	// FormatYAML treats the source as a YAML sequence of hostname strings,
	// parsed with the same strict decoder as allowlist.NewFromYAML.
	FormatYAML
)

// Config controls a bulk load run.
type Config struct {
	// Format selects the blocklist's on-disk shape.
	Format Format
	// Concurrency is the number of normalization workers. Zero selects
	// runtime.GOMAXPROCS(0) after adjusting it for any cgroup CPU quota via
	// go.uber.org/automaxprocs.
	Concurrency int
	// DedupSize bounds the construction-time segment dedup LRU. Zero
	// disables dedup entirely.
	DedupSize int
	// Allowlist, if non-nil, names hostnames exempted from the blocklist:
	// a candidate exactly matching an allowlist entry (post-normalization)
	// is counted as Skipped rather than inserted, regardless of what the
	// blocklist source says.
	Allowlist *allowlist.List[string]
	// Metrics, if non-nil, is observed at the end of the run.
	Metrics *Metrics
}

// Result summarizes one bulk load run.
type Result struct {
	// CorrelationID is a nuid-generated opaque identifier for this run,
	// suitable for tying together log lines and metric labels; it has no
	// effect on trie semantics.
	CorrelationID string
	Attempted     int
	Inserted      int
	Skipped       int
	Rejected      int
}

type lineResult struct {
	hostname string
	ok       bool
}

// Load reads a blocklist from r per cfg.Format, normalizes each candidate
// hostname, and inserts the valid ones into t within c. Lines rejected by
// hostname.Normalize are counted in Result.Rejected and logged at Warning,
// but do not abort the run.
func Load(ctx context.Context, c *trie.Container, t trie.TrieRef, r io.Reader, cfg Config, logger blog.Logger) (Result, error) {
	start := time.Now()
	res := Result{CorrelationID: nuid.Next()}
	defer func() { cfg.Metrics.observe(res, time.Since(start).Seconds()) }()

	candidates, err := readCandidates(r, cfg.Format)
	if err != nil {
		return res, fmt.Errorf("reading blocklist: %w", err)
	}

	if cfg.DedupSize > 0 {
		dedup, err := NewLRUDedup(cfg.DedupSize)
		if err != nil {
			return res, fmt.Errorf("constructing dedup cache: %w", err)
		}
		// trie.Container takes its dedup assist as a construction-time
		// Option; a running bulk load installs one directly since a
		// Container may be reused across multiple loads.
		c.SetDedup(&countingDedup{LRUDedup: dedup, metrics: cfg.Metrics})
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
		workers = runtime.GOMAXPROCS(0)
		if workers < 1 {
			workers = 1
		}
	}

	in := make(chan string, workers*4)
	out := make(chan lineResult, workers*4)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for candidate := range in {
				normalized, err := hostname.Normalize(candidate)
				if err != nil {
					out <- lineResult{hostname: candidate, ok: false}
					continue
				}
				out <- lineResult{hostname: normalized, ok: true}
			}
		}()
	}

	go func() {
		defer close(in)
		for _, candidate := range candidates {
			select {
			case in <- candidate:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for lr := range out {
		res.Attempted++
		if !lr.ok {
			res.Rejected++
			logger.Warningf("loader[%s]: rejecting syntactically invalid hostname %q", res.CorrelationID, lr.hostname)
			continue
		}
		if cfg.Allowlist != nil && cfg.Allowlist.Contains(lr.hostname) {
			res.Skipped++
			continue
		}
		inserted, err := c.AddHostname(t, lr.hostname)
		if err != nil {
			return res, fmt.Errorf("loader[%s]: inserting %q: %w", res.CorrelationID, lr.hostname, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	logger.Infof("loader[%s]: attempted=%d inserted=%d skipped=%d rejected=%d",
		res.CorrelationID, res.Attempted, res.Inserted, res.Skipped, res.Rejected)

	return res, nil
}

// readCandidates reads every candidate hostname string out of r according
// to format, without validating or normalizing any of them.
func readCandidates(r io.Reader, format Format) ([]string, error) {
	switch format {
	case FormatYAML:
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		var candidates []string
		if err := strictyaml.Unmarshal(buf, &candidates); err != nil {
			return nil, err
		}
		return candidates, nil
	default:
		var candidates []string
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 || line[0] == '#' {
				continue
			}
			candidates = append(candidates, string(line))
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return candidates, nil
	}
}
