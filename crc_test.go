package mercury

import (
	"testing"
)

// crc16Bitwise is the shift-and-xor form the table is derived from.
func crc16Bitwise(bs []byte) uint16 {
	val := uint16(0xFFFF)
	for _, b := range bs {
		val ^= uint16(b)
		for i := 0; i < 8; i++ {
			if val&0x0001 != 0 {
				val = (val >> 1) ^ 0xA001
			} else {
				val >>= 1
			}
		}
	}
	return val
}

func TestCRC16(t *testing.T) {
	type args struct {
		bs []byte
	}
	tests := []struct {
		name string
		args args
		want uint16
	}{
		{"generic", args{[]byte{0x01, 0x02, 0x03, 0x04, 0x05}}, 0xbb2a},
		{"probe addr 0", args{[]byte{0x00, 0x00}}, 0xb001},
		{"open session", args{[]byte{0x00, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01}}, 0x8177},
		{"close session", args{[]byte{0x00, 0x02}}, 0x7180},
		{"read voltage", args{[]byte{0x00, 0x08, 0x16, 0x11}}, 0x8a4f},
		{"modbus read holding", args{[]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}}, 0x0a84},
		{"empty", args{[]byte{}}, 0xffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC16(tt.args.bs); got != tt.want {
				t.Errorf("CRC16() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestCRC16_Deterministic(t *testing.T) {
	frame := []byte{0x00, 0x05, 0x00, 0x00}
	first := CRC16(frame)
	for i := 0; i < 10; i++ {
		if got := CRC16(frame); got != first {
			t.Fatalf("CRC16() call %d = %#04x, want %#04x", i, got, first)
		}
	}
}

func TestCRC16_MatchesBitwise(t *testing.T) {
	buf := make([]byte, 0, 256)
	for i := 0; i < 256; i++ {
		buf = append(buf, byte(i*7+3))
		if got, want := CRC16(buf), crc16Bitwise(buf); got != want {
			t.Fatalf("CRC16(len=%d) = %#04x, want %#04x", len(buf), got, want)
		}
	}
}

func Test_appendCRC(t *testing.T) {
	got := appendCRC([]byte{0x00, 0x00})
	want := []byte{0x00, 0x00, 0x01, 0xb0}
	if string(got) != string(want) {
		t.Errorf("appendCRC() = % x, want % x", got, want)
	}
}

func BenchmarkCRC16(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = CRC16([]byte{0x00, 0x08, 0x16, 0x11})
	}
}
