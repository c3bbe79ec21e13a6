package trie

import (
	"sort"
	"testing"

	"github.com/quietdns/hosttrie/test"
)

func mustAdd(t *testing.T, c *Container, ref TrieRef, hostname string) bool {
	t.Helper()
	added, err := c.AddHostname(ref, hostname)
	test.AssertNotError(t, err, "Add("+hostname+")")
	return added
}

func TestSingleHostnameMatching(t *testing.T) {
	c := NewContainer(WithBackend(BackendScalar))
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	added := mustAdd(t, c, ref, "example.com")
	test.Assert(t, added, "first insert should report added")

	test.AssertEquals(t, c.MatchesHostname(ref, "example.com"), 0)
	test.AssertEquals(t, c.MatchesHostname(ref, "foo.example.com"), 4)
	test.AssertEquals(t, c.MatchesHostname(ref, "notexample.com"), -1)
	test.AssertEquals(t, c.MatchesHostname(ref, "example.org"), -1)
}

func TestAddIsIdempotent(t *testing.T) {
	c := NewContainer(WithBackend(BackendScalar))
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	test.Assert(t, mustAdd(t, c, ref, "ads.example.com"), "first insert should report added")
	before := c.Stats().CellBytes + c.Stats().SegmentBytes

	test.Assert(t, !mustAdd(t, c, ref, "ads.example.com"), "re-insert should report not added")
	after := c.Stats().CellBytes + c.Stats().SegmentBytes

	test.AssertEquals(t, before, after)
}

func TestInsertionOrderIndependent(t *testing.T) {
	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c", "other.net"}
	queries := []string{"example.com", "foo.sub.example.com", "b.c", "x.a.b.c", "a.b.c", "notexample.com", "c"}

	c1 := NewContainer(WithBackend(BackendScalar))
	ref1, _ := c1.NewTrie()
	for _, n := range names {
		mustAdd(t, c1, ref1, n)
	}

	reversed := make([]string, len(names))
	copy(reversed, names)
	sort.Sort(sort.Reverse(sort.StringSlice(reversed)))

	c2 := NewContainer(WithBackend(BackendScalar))
	ref2, _ := c2.NewTrie()
	for _, n := range reversed {
		mustAdd(t, c2, ref2, n)
	}

	for _, q := range queries {
		m1 := c1.MatchesHostname(ref1, q)
		m2 := c2.MatchesHostname(ref2, q)
		test.AssertEquals(t, m1, m2)
	}
}

// A match always resolves against the shortest stored ancestor suffix: the
// root holds the suffix shared by every hostname beneath it, and matches
// returns as soon as it passes that boundary, never descending further to
// look for a longer, more specific stored name. So once both "a.b.c" and
// "b.c" are stored, querying "a.b.c" itself matches via the shorter "b.c"
// entry (2 bytes unconsumed), not the exact 5-byte entry.
func TestSharedSuffixBranching(t *testing.T) {
	c := NewContainer(WithBackend(BackendScalar))
	ref, _ := c.NewTrie()
	mustAdd(t, c, ref, "a.b.c")
	mustAdd(t, c, ref, "b.c")

	test.AssertEquals(t, c.MatchesHostname(ref, "a.b.c"), 2)
	test.AssertEquals(t, c.MatchesHostname(ref, "b.c"), 0)
	test.AssertEquals(t, c.MatchesHostname(ref, "x.a.b.c"), 4)
	test.AssertEquals(t, c.MatchesHostname(ref, "x.b.c"), 2)
	test.AssertEquals(t, c.MatchesHostname(ref, "c"), -1)
	test.AssertEquals(t, c.MatchesHostname(ref, "ab.c"), -1)
}

func TestIterateYieldsExactSet(t *testing.T) {
	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c"}
	c := NewContainer(WithBackend(BackendScalar))
	ref, _ := c.NewTrie()
	for _, n := range names {
		mustAdd(t, c, ref, n)
	}

	got := map[string]bool{}
	for name := range c.Iterate(ref) {
		got[name] = true
	}

	test.AssertEquals(t, len(got), len(names))
	for _, n := range names {
		test.Assert(t, got[n], "iterate missing "+n)
	}
}

func TestOptimizePreservesMatches(t *testing.T) {
	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c", "other.net"}
	c := NewContainer(WithBackend(BackendScalar))
	ref, _ := c.NewTrie()
	for _, n := range names {
		mustAdd(t, c, ref, n)
	}

	c.Optimize()

	test.AssertEquals(t, c.MatchesHostname(ref, "example.com"), 0)
	test.AssertEquals(t, c.MatchesHostname(ref, "foo.sub.example.com"), 8)
	test.AssertEquals(t, c.MatchesHostname(ref, "b.c"), 0)
	test.AssertEquals(t, c.MatchesHostname(ref, "x.a.b.c"), 2)
}

func TestSerializeRestoreWithoutReinsertion(t *testing.T) {
	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c"}
	c := NewContainer(WithBackend(BackendScalar))
	ref, _ := c.NewTrie()
	for _, n := range names {
		mustAdd(t, c, ref, n)
	}
	c.Optimize()
	serialized := append([]byte{}, c.Bytes()...)

	restored, err := Restore(serialized, WithBackend(BackendScalar))
	test.AssertNotError(t, err, "Restore")

	// A restored Container shares no memory with c; root must be recovered
	// via FirstRoot rather than reusing the original in-memory ref.
	root := FirstRoot()
	test.AssertEquals(t, root, ref)
	test.AssertEquals(t, restored.MatchesHostname(root, "example.com"), 0)
	test.AssertEquals(t, restored.MatchesHostname(root, "foo.ads.example.com"), 4)
	test.AssertEquals(t, restored.MatchesHostname(root, "b.c"), 0)
	test.AssertEquals(t, restored.MatchesHostname(root, "notb.c"), -1)
}

func TestEmptyNeedleIsNoOp(t *testing.T) {
	c := NewContainer(WithBackend(BackendScalar))
	ref, _ := c.NewTrie()

	added, err := c.AddHostname(ref, "")
	test.AssertNotError(t, err, "Add empty")
	test.Assert(t, !added, "empty needle should not be added")
	test.AssertEquals(t, c.MatchesHostname(ref, ""), -1)
}

func TestNeedleTruncation(t *testing.T) {
	c := NewContainer(WithBackend(BackendScalar))
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	c.SetNeedle(string(long))
	test.AssertEquals(t, c.needleLen(), maxNeedleLen)
}

func TestGrowBufAcrossManyInsertions(t *testing.T) {
	c := NewContainer(WithInitialSize(cellRegionStart+minCellHeadroom+64, cellRegionStart+minCellHeadroom+32), WithBackend(BackendScalar))
	ref, err := c.NewTrie()
	test.AssertNotError(t, err, "NewTrie")

	for i := 0; i < 2000; i++ {
		host := randomHostLike(i)
		_, err := c.AddHostname(ref, host)
		test.AssertNotError(t, err, "Add under growth")
	}
}

func randomHostLike(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 0, 24)
	n := i
	for j := 0; j < 6; j++ {
		b = append(b, letters[(n+j*7)%26])
	}
	b = append(b, '.', 'e', 'x', '.', 'c', 'o', 'm')
	return string(b)
}
