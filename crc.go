package mercury

import (
	"sync"
)

const crcPoly16 = 0xa001

// Cyclical Redundancy Checking
type crc struct {
	once  sync.Once
	table []uint16
}

var crcTb crc

// CRC16 computes the Modbus-RTU CRC-16 (mask 0xA001, init 0xFFFF) of bs.
// Append it to a frame low byte first.
func CRC16(bs []byte) uint16 {
	crcTb.once.Do(crcTb.initTable)

	val := uint16(0xFFFF)
	for _, v := range bs {
		val = (val >> 8) ^ crcTb.table[(val^uint16(v))&0x00FF]
	}
	return val
}

// initTable precomputes the register value for every low byte.
func (c *crc) initTable() {
	c.table = make([]uint16, 256)

	for i := uint16(0); i < 256; i++ {
		val := i
		for j := 0; j < 8; j++ {
			if val&0x0001 != 0 {
				val = (val >> 1) ^ crcPoly16
			} else {
				val >>= 1
			}
		}
		c.table[i] = val
	}
}

// appendCRC appends the checksum of frame to frame, low byte first.
func appendCRC(frame []byte) []byte {
	checksum := CRC16(frame)
	return append(frame, byte(checksum), byte(checksum>>8))
}
