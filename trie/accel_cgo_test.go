//go:build cgo

package trie

import (
	"testing"

	"github.com/quietdns/hosttrie/test"
	"github.com/quietdns/hosttrie/trie/xaccel"
)

// buildParityPair inserts names into two otherwise-identical Containers, one
// restricted to the scalar matcher and one with its native matcher forced
// on (bypassing BackendAuto's endianness autodetection, so this test still
// exercises the native path on a big-endian cgo build host). Both Containers
// must be byte-for-byte equivalent in their buffer layout, since AddHostname
// never consults c.useNative.
func buildParityPair(t *testing.T, names []string) (scalar, native *Container, ref TrieRef) {
	t.Helper()
	scalar = NewContainer(WithBackend(BackendScalar))
	sref, err := scalar.NewTrie()
	test.AssertNotError(t, err, "NewTrie scalar")

	native = NewContainer(WithBackend(BackendScalar))
	nref, err := native.NewTrie()
	test.AssertNotError(t, err, "NewTrie native")
	test.AssertEquals(t, sref, nref)

	for _, n := range names {
		mustAdd(t, scalar, sref, n)
		mustAdd(t, native, nref, n)
	}
	native.useNative = true

	return scalar, native, sref
}

// TestNativeMatcherAgreesWithScalar drives the same property-table queries
// the scalar-only tests in trie_test.go use through both the scalar matcher
// and the cgo-accelerated one, and requires identical results for every
// query: the native matcher must be byte-for-byte interchangeable with the
// scalar one, never just "close enough".
func TestNativeMatcherAgreesWithScalar(t *testing.T) {
	if !xaccel.Available() {
		t.Skip("native matcher not available on this build")
	}

	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c", "other.net"}
	queries := []string{
		"example.com", "foo.example.com", "notexample.com", "example.org",
		"foo.sub.example.com", "ads.example.com", "a.b.c", "b.c", "x.a.b.c",
		"x.b.c", "c", "ab.c", "notb.c", "", "other.net", "foo.other.net",
	}

	scalarC, nativeC, ref := buildParityPair(t, names)

	for _, q := range queries {
		want := scalarC.MatchesHostname(ref, q)
		got := nativeC.MatchesHostname(ref, q)
		if got != want {
			t.Errorf("query %q: scalar=%d native=%d", q, want, got)
		}
	}
}

// TestNativeMatcherAgreesWithScalarAfterOptimize repeats the parity check
// after Optimize, since compaction rewrites every offset the native matcher
// reads directly out of the buffer via pointer arithmetic.
func TestNativeMatcherAgreesWithScalarAfterOptimize(t *testing.T) {
	if !xaccel.Available() {
		t.Skip("native matcher not available on this build")
	}

	names := []string{"example.com", "sub.example.com", "ads.example.com", "a.b.c", "b.c", "other.net"}
	queries := []string{"example.com", "foo.sub.example.com", "b.c", "x.a.b.c", "notexample.com"}

	scalarC, nativeC, ref := buildParityPair(t, names)
	scalarC.Optimize()
	nativeC.Optimize()

	for _, q := range queries {
		want := scalarC.MatchesHostname(ref, q)
		got := nativeC.MatchesHostname(ref, q)
		if got != want {
			t.Errorf("query %q after Optimize: scalar=%d native=%d", q, want, got)
		}
	}
}
