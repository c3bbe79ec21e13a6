package loader

import (
	"context"
	"strings"
	"testing"

	"github.com/quietdns/hosttrie/allowlist"
	blog "github.com/quietdns/hosttrie/log"
	"github.com/quietdns/hosttrie/test"
	"github.com/quietdns/hosttrie/trie"
)

func TestLoadLinesFormat(t *testing.T) {
	c := trie.NewContainer()
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	src := "# comment\nexample.com\nADS.Example.Com\n\nsub.example.com\nnot a valid host!!\n"
	logger := blog.NewMock()

	res, err := Load(context.Background(), c, ref, strings.NewReader(src), Config{Format: FormatLines}, logger)
	test.AssertNotError(t, err, "Load")

	test.AssertEquals(t, res.Inserted, 3)
	test.AssertEquals(t, res.Rejected, 1)

	test.Assert(t, c.MatchesHostname(ref, "example.com") >= 0, "example.com should match after load")
	test.Assert(t, c.MatchesHostname(ref, "ads.example.com") >= 0, "normalized ads.example.com should match after load")
	test.Assert(t, c.MatchesHostname(ref, "sub.example.com") >= 0, "sub.example.com should match after load")
}

func TestLoadYAMLFormat(t *testing.T) {
	c := trie.NewContainer()
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	src := "- example.com\n- other.example.net\n"
	logger := blog.NewMock()

	res, err := Load(context.Background(), c, ref, strings.NewReader(src), Config{Format: FormatYAML}, logger)
	test.AssertNotError(t, err, "Load")
	test.AssertEquals(t, res.Inserted, 2)
}

func TestLoadSkipsAllowlistedHostnames(t *testing.T) {
	c := trie.NewContainer()
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	al := allowlist.NewList([]string{"safe.example.com"})
	src := "safe.example.com\nbad.example.com\n"
	logger := blog.NewMock()

	res, err := Load(context.Background(), c, ref, strings.NewReader(src), Config{Format: FormatLines, Allowlist: al}, logger)
	test.AssertNotError(t, err, "Load")

	test.AssertEquals(t, res.Inserted, 1)
	test.AssertEquals(t, res.Skipped, 1)
	test.Assert(t, c.MatchesHostname(ref, "safe.example.com") < 0, "allowlisted hostname should not have been inserted")
	test.Assert(t, c.MatchesHostname(ref, "bad.example.com") >= 0, "non-allowlisted hostname should have been inserted")
}

func TestLoadWithDedup(t *testing.T) {
	c := trie.NewContainer()
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	src := "a.example.com\nb.example.com\nc.example.com\n"
	logger := blog.NewMock()

	res, err := Load(context.Background(), c, ref, strings.NewReader(src), Config{Format: FormatLines, DedupSize: 16}, logger)
	test.AssertNotError(t, err, "Load")
	test.AssertEquals(t, res.Inserted, 3)
}
