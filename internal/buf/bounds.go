// Package buf holds overflow-safe bounds arithmetic for arena offsets.
package buf

import "math"

// End returns off+n. ok is false when n is negative or the sum overflows int.
func End(off, n int) (int, bool) {
	if n < 0 || off > math.MaxInt-n {
		return 0, false
	}
	return off + n, true
}

// Within reports whether [off, off+n) lies inside [low, high).
func Within(off, n, low, high int) bool {
	if off < low {
		return false
	}
	end, ok := End(off, n)
	return ok && end <= high
}

// Window returns b[off:off+n] when the range lies inside b.
func Window(b []byte, off, n int) ([]byte, bool) {
	if !Within(off, n, 0, len(b)) {
		return nil, false
	}
	return b[off : off+n], true
}
