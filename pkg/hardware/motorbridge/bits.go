package motorbridge

import "math"

func float32FromUint32Bits(bits uint32) float32 {
	return math.Float32frombits(bits)
}
