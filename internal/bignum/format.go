package bignum

import (
	"fmt"
	"strings"
)

// String formats x as "0x" followed by each used limb, most significant
// first, as 16 zero-padded lowercase hex digits. Limb 0 is always printed,
// so zero formats as "0x0000000000000000".
func (x Int) String() string {
	n := x.mag.UsedLen()
	if n == 0 {
		n = 1
	}
	var sb strings.Builder
	sb.Grow(2 + 16*n)
	sb.WriteString("0x")
	for i := n - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%016x", x.mag.At(i).U64())
	}
	return sb.String()
}
