// Command trie-query restores a compacted trie buffer from a file or a
// cache.Store and reports, for each hostname read from stdin, whether it
// matches.
package notmain

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/quietdns/hosttrie/cache"
	"github.com/quietdns/hosttrie/cmd"
	"github.com/quietdns/hosttrie/hostname"
	"github.com/quietdns/hosttrie/trie"
)

func main() {
	inPath := flag.String("in", "", "path to a compacted trie buffer")
	cacheConfigPath := flag.String("cache-config", "", "path to a JSON cache.Config, to Get the buffer from a cache.Store instead of -in")
	cacheKey := flag.String("cache-key", "hosttrie", "key to Get the buffer from when -cache-config is set")
	stdoutLevel := flag.Int("stdout-level", 6, "syslog-style level for stdout logging")
	syslogLevel := flag.Int("syslog-level", -1, "syslog-style level for syslog logging; -1 disables syslog")
	flag.Parse()

	logger := cmd.NewLogger(cmd.SyslogConfig{StdoutLevel: *stdoutLevel, SyslogLevel: *syslogLevel})

	if *inPath == "" && *cacheConfigPath == "" {
		cmd.Fail("one of -in or -cache-config is required")
	}

	var buf []byte
	var err error
	if *inPath != "" {
		buf, err = os.ReadFile(*inPath)
		cmd.FailOnError(err, "reading trie buffer")
	} else {
		configBytes, err := os.ReadFile(*cacheConfigPath)
		cmd.FailOnError(err, "reading cache config")

		var cacheCfg cache.Config
		err = json.Unmarshal(configBytes, &cacheCfg)
		cmd.FailOnError(err, "parsing cache config")

		ring, err := cacheCfg.NewRing(nil)
		cmd.FailOnError(err, "constructing cache ring")

		store := cache.NewRedisStore(ring)
		buf, err = store.Get(context.Background(), *cacheKey)
		cmd.FailOnError(err, "fetching trie buffer from cache")
	}

	container, err := trie.Restore(buf)
	cmd.FailOnError(err, "restoring trie container")
	root := trie.FirstRoot()

	logger.Infof("restored trie: %s", container.String())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		host := scanner.Text()
		if host == "" {
			continue
		}
		normalized, err := hostname.Normalize(host)
		if err != nil {
			fmt.Printf("%s INVALID: %s\n", host, err)
			continue
		}
		unmatched := container.MatchesHostname(root, normalized)
		if unmatched < 0 {
			fmt.Printf("%s NOMATCH\n", host)
			continue
		}
		fmt.Printf("%s MATCH unmatched=%d\n", host, unmatched)
	}
	err = scanner.Err()
	cmd.FailOnError(err, "reading hostnames from stdin")
}

func init() {
	cmd.RegisterCommand("trie-query", main, nil)
}
