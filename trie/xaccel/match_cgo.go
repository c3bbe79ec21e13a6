//go:build cgo

// Package xaccel provides the optional native-compiled matcher: a thin Go
// wrapper over a handful of exported C functions, with the key difference
// that this matcher never owns memory of its own — it reads directly out
// of the Container's existing linear buffer via pointer arithmetic.
package xaccel

/*
#include "match.h"
*/
import "C"
import "unsafe"

// Available reports whether this build was compiled with cgo support for
// the native matcher.
func Available() bool { return true }

// Match runs the native matcher over buf starting at the trie root iroot,
// against a needle of length needleLen staged at buf[0:255]. Returns the
// unconsumed needle length on a match, or -1 on a miss.
func Match(buf []byte, iroot uint32, needleLen int32) int32 {
	if len(buf) == 0 {
		return -1
	}
	p := (*C.uchar)(unsafe.Pointer(&buf[0]))
	return int32(C.hosttrie_match(p, C.uint32_t(len(buf)), C.uint32_t(iroot), C.int32_t(needleLen)))
}
