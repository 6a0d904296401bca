package cycles

// Now returns the time-stamp counter.
func Now() uint64

// Source names the counter behind Now.
func Source() string {
	return "rdtscp"
}
