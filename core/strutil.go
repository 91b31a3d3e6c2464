package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

const hexDigits = "0123456789abcdef"

// hex8 formats a byte as 0xNN
func hex8(b uint8) string {
	return string([]byte{'0', 'x', hexDigits[b>>4], hexDigits[b&0x0F]})
}

// hex32 formats a register value as 0xNNNNNNNN
func hex32(v uint32) string {
	buf := [10]byte{'0', 'x'}
	for i := 0; i < 8; i++ {
		buf[9-i] = hexDigits[v&0x0F]
		v >>= 4
	}
	return string(buf[:])
}
