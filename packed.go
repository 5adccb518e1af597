package mercury

// flagMask clears the two top bits the meter uses as direction/flag bits.
const flagMask = 0x3F

// B3F decodes a 3-byte packed field: ((b0&0x3F)<<16 | b2<<8 | b1) / scale.
func B3F(b []byte, scale float64) float64 {
	_ = b[2]
	val := uint32(b[0]&flagMask)<<16 | uint32(b[2])<<8 | uint32(b[1])
	return float64(val) / scale
}

// B4F decodes a 4-byte packed field: ((b1&0x3F)<<24 | b0<<16 | b3<<8 | b2) / scale.
func B4F(b []byte, scale float64) float64 {
	_ = b[3]
	val := uint32(b[1]&flagMask)<<24 | uint32(b[0])<<16 | uint32(b[3])<<8 | uint32(b[2])
	return float64(val) / scale
}
