package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	var u uint64
	if negative {
		u = uint64(-int64(n))
	} else {
		u = uint64(n)
	}

	s := utoa64(u)
	if negative {
		return "-" + s
	}
	return s
}

// utoa64 converts an unsigned 64-bit integer to a string
func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Itoa is exported for drivers that build debug messages
func Itoa(n int) string {
	return itoa(n)
}

// Utoa64 is exported for drivers that build debug messages
func Utoa64(n uint64) string {
	return utoa64(n)
}
