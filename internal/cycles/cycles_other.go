//go:build !amd64

package cycles

import _ "unsafe"

//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Now returns the monotonic clock in nanoseconds.
func Now() uint64 {
	return uint64(nanotime())
}

// Source names the counter behind Now.
func Source() string {
	return "nanotime"
}
