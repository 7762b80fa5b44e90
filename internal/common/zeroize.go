package common

import "runtime"

// ZeroizeBytes overwrites buf with zeros. runtime.KeepAlive keeps the compiler from
// eliding the stores (golang/go#33325). Copies the garbage collector made earlier are
// out of reach.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
