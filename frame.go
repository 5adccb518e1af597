package mercury

import (
	"encoding/binary"
	"fmt"
)

// request sizes
const (
	probeRequestSize  = 4  // address(1) + command(1) + crc(2)
	openRequestSize   = 11 // address(1) + command(1) + level(1) + password(6) + crc(2)
	closeRequestSize  = 4  // address(1) + command(1) + crc(2)
	paramRequestSize  = 6  // address(1) + command(1) + param(1) + subIndex(1) + crc(2)
	energyRequestSize = 6  // address(1) + command(1) + period|month(1) + tariff(1) + crc(2)
)

const (
	field3Size = 3
	field4Size = 4
)

// Shape is the fixed layout of a response frame.
type Shape int

// Response shapes
const (
	ShapeStatus Shape = iota // address, status, crc
	Shape3b                  // address, value[3], crc
	Shape3x3b                // address, p1[3], p2[3], p3[3], crc
	Shape4x3b                // address, sum[3], p1[3], p2[3], p3[3], crc
	Shape4x4b                // address, ap[4], am[4], rp[4], rm[4], crc
)

// Size returns the total frame size of the shape in bytes.
func (s Shape) Size() int {
	return addressSize + s.fields()*s.fieldSize() + crcSize
}

func (s Shape) fields() int {
	switch s {
	case Shape3b:
		return 1
	case Shape3x3b:
		return 3
	case Shape4x3b, Shape4x4b:
		return 4
	}
	return 1
}

func (s Shape) fieldSize() int {
	switch s {
	case Shape3b, Shape3x3b, Shape4x3b:
		return field3Size
	case Shape4x4b:
		return field4Size
	}
	return 1
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ShapeStatus:
		return "status"
	case Shape3b:
		return "3b"
	case Shape3x3b:
		return "3x3b"
	case Shape4x3b:
		return "4x3b"
	case Shape4x4b:
		return "4x4b"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

//  Probe request
//  Address         : 1 byte
//  Command         : 1 byte (0x00)
//  CRC             : 2 byte
func encodeProbe(address byte) []byte {
	return appendCRC(append(make([]byte, 0, probeRequestSize), address, CmdProbe))
}

//  Open session request
//  Address         : 1 byte
//  Command         : 1 byte (0x01)
//  Access level    : 1 byte
//  Password        : 6 byte
//  CRC             : 2 byte
func encodeOpen(address, level byte, password [PasswordSize]byte) []byte {
	frame := append(make([]byte, 0, openRequestSize), address, CmdOpen, level)
	frame = append(frame, password[:]...)
	return appendCRC(frame)
}

//  Close session request
//  Address         : 1 byte
//  Command         : 1 byte (0x02)
//  CRC             : 2 byte
func encodeClose(address byte) []byte {
	return appendCRC(append(make([]byte, 0, closeRequestSize), address, CmdClose))
}

//  Read auxiliary parameter request
//  Address         : 1 byte
//  Command         : 1 byte (0x08)
//  Parameter       : 1 byte (0x16)
//  Sub-index       : 1 byte
//  CRC             : 2 byte
func encodeReadParam(address, subIndex byte) []byte {
	return appendCRC(append(make([]byte, 0, paramRequestSize), address, CmdReadParam, ParamAuxiliary, subIndex))
}

//  Read energy counters request
//  Address         : 1 byte
//  Command         : 1 byte (0x05)
//  Period | month  : 1 byte (period<<4 | month&0x0F)
//  Tariff          : 1 byte (0 all tariffs, n tariff #n)
//  CRC             : 2 byte
func encodeEnergy(address byte, period Period, month, tariff byte) []byte {
	return appendCRC(append(make([]byte, 0, energyRequestSize),
		address, CmdEnergy, byte(period)<<4|month&0x0F, tariff))
}

// CheckResult validates a response frame against shape: exact size first,
// then the trailing CRC. The address byte is not inspected.
func CheckResult(shape Shape, adu []byte) error {
	if len(adu) != shape.Size() {
		return fmt.Errorf("%w: response length '%v' does not match '%v' for shape %v",
			ErrWrongResultSize, len(adu), shape.Size(), shape)
	}
	crc, expect := CRC16(adu[:len(adu)-crcSize]), binary.LittleEndian.Uint16(adu[len(adu)-crcSize:])
	if crc != expect {
		return fmt.Errorf("%w: response crc '%x' does not match expected '%x'", ErrWrongCrc, expect, crc)
	}
	return nil
}

// DecodeStatus validates a status response and returns its raw status byte.
func DecodeStatus(adu []byte) (byte, error) {
	if err := CheckResult(ShapeStatus, adu); err != nil {
		return 0, err
	}
	return adu[addressSize], nil
}

// Decode validates a numeric response and decodes every packed field with
// scale, in frame order.
func Decode(shape Shape, adu []byte, scale float64) ([]float64, error) {
	if shape == ShapeStatus {
		return nil, fmt.Errorf("mercury: shape %v carries no numeric fields", shape)
	}
	if err := CheckResult(shape, adu); err != nil {
		return nil, err
	}
	return decodeFields(shape, adu, scale), nil
}

// decodeFields decodes the packed fields of an already validated frame.
func decodeFields(shape Shape, adu []byte, scale float64) []float64 {
	size := shape.fieldSize()
	values := make([]float64, shape.fields())
	for i := range values {
		field := adu[addressSize+i*size : addressSize+(i+1)*size]
		if size == field4Size {
			values[i] = B4F(field, scale)
		} else {
			values[i] = B3F(field, scale)
		}
	}
	return values
}
