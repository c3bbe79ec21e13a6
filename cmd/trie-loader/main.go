// Command trie-loader reads a blocklist, builds a hostname trie, optimizes
// it, and writes the compacted buffer to a file or a configured cache.Store.
package notmain

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/quietdns/hosttrie/allowlist"
	"github.com/quietdns/hosttrie/cache"
	"github.com/quietdns/hosttrie/cmd"
	"github.com/quietdns/hosttrie/loader"
	"github.com/quietdns/hosttrie/trie"
)

func main() {
	blocklistPath := flag.String("blocklist", "", "path to the blocklist file (required)")
	format := flag.String("format", "lines", "blocklist format: \"lines\" or \"yaml\"")
	allowlistPath := flag.String("allowlist", "", "optional path to a YAML sequence of hostnames exempted from the blocklist")
	outPath := flag.String("out", "", "path to write the compacted trie buffer to")
	cacheConfigPath := flag.String("cache-config", "", "path to a JSON cache.Config, to Put the compacted buffer into a cache.Store instead of (or in addition to) -out")
	cacheKey := flag.String("cache-key", "hosttrie", "key to Put the compacted buffer under when -cache-config is set")
	concurrency := flag.Int("concurrency", 0, "normalization worker count; 0 auto-sizes from GOMAXPROCS")
	dedupSize := flag.Int("dedup-size", 1 << 20, "bound on the construction-time segment dedup LRU; 0 disables dedup")
	stdoutLevel := flag.Int("stdout-level", 6, "syslog-style level for stdout logging")
	syslogLevel := flag.Int("syslog-level", -1, "syslog-style level for syslog logging; -1 disables syslog")
	flag.Parse()

	logger := cmd.NewLogger(cmd.SyslogConfig{StdoutLevel: *stdoutLevel, SyslogLevel: *syslogLevel})

	if *blocklistPath == "" {
		cmd.Fail("-blocklist is required")
	}
	if *outPath == "" && *cacheConfigPath == "" {
		cmd.Fail("at least one of -out or -cache-config is required")
	}

	var fileFormat loader.Format
	switch *format {
	case "lines":
		fileFormat = loader.FormatLines
	case "yaml":
		fileFormat = loader.FormatYAML
	default:
		cmd.Fail(fmt.Sprintf("unrecognized -format %q", *format))
	}

	blocklistFile, err := os.Open(*blocklistPath)
	cmd.FailOnError(err, "opening blocklist")
	defer blocklistFile.Close()

	var al *allowlist.List[string]
	if *allowlistPath != "" {
		allowlistBytes, err := os.ReadFile(*allowlistPath)
		cmd.FailOnError(err, "reading allowlist")
		al, err = allowlist.NewFromYAML[string](allowlistBytes)
		cmd.FailOnError(err, "parsing allowlist")
	}

	container := trie.NewContainer()
	ref, err := container.NewTrie()
	cmd.FailOnError(err, "allocating trie root")

	loadCfg := loader.Config{
		Format:      fileFormat,
		Concurrency: *concurrency,
		DedupSize:   *dedupSize,
		Allowlist:   al,
	}
	res, err := loader.Load(context.Background(), container, ref, blocklistFile, loadCfg, logger)
	cmd.FailOnError(err, "loading blocklist")

	stats := container.Optimize()
	logger.Infof("loader[%s]: attempted=%d inserted=%d skipped=%d rejected=%d cellBytes=%d segmentBytes=%d bufLen=%d",
		res.CorrelationID, res.Attempted, res.Inserted, res.Skipped, res.Rejected,
		stats.CellBytes, stats.SegmentBytes, stats.BufLen)

	buf := container.Bytes()

	if *outPath != "" {
		err = os.WriteFile(*outPath, buf, 0644)
		cmd.FailOnError(err, "writing compacted trie buffer")
	}

	if *cacheConfigPath != "" {
		configBytes, err := os.ReadFile(*cacheConfigPath)
		cmd.FailOnError(err, "reading cache config")

		var cacheCfg cache.Config
		err = json.Unmarshal(configBytes, &cacheCfg)
		cmd.FailOnError(err, "parsing cache config")

		ring, err := cacheCfg.NewRing(nil)
		cmd.FailOnError(err, "constructing cache ring")

		store := cache.NewRedisStore(ring)
		err = store.Put(context.Background(), *cacheKey, buf)
		cmd.FailOnError(err, "storing compacted trie buffer in cache")
	}

	logger.AuditInfo("trie-loader run complete")
}

func init() {
	cmd.RegisterCommand("trie-loader", main, nil)
}
