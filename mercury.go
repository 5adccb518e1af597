/*!
 * Frame layout of the Mercury 236 RS-485 protocol. Every frame, request or
 * response, starts with the meter address and ends with a Modbus-RTU CRC.
 *
 * <code>
 *  +-----------+-------------------------------------------+-------------+
 *  | Address   | Command + parameters / response payload    | CRC16 (L,H) |
 *  +-----------+-------------------------------------------+-------------+
 *
 * Requests:
 *  probe        addr 0x00                               CRC   4 bytes
 *  open         addr 0x01 level password[6]             CRC  11 bytes
 *  close        addr 0x02                               CRC   4 bytes
 *  read param   addr 0x08 0x16 subIndex                 CRC   6 bytes
 *  read energy  addr 0x05 (period<<4|month) tariff      CRC   6 bytes
 *
 * Responses:
 *  status       addr status                             CRC   4 bytes
 *  3b           addr v[3]                               CRC   6 bytes
 *  3x3b         addr p1[3] p2[3] p3[3]                  CRC  12 bytes
 *  4x3b         addr sum[3] p1[3] p2[3] p3[3]           CRC  15 bytes
 *  4x4b         addr ap[4] am[4] rp[4] rm[4]            CRC  19 bytes
 * </code>
 */

/*
Package mercury provides a client for the Mercury 236 three-phase
electricity meter over an RS-485 line.
*/
package mercury

import (
	"fmt"
)

// DefaultAddress is the RS-485 address of the power meter.
const DefaultAddress = 0

const (
	addressSize = 1
	crcSize     = 2

	// largest response (4x4b) is 19 bytes, leave room for garbage.
	responseBufferSize = 255
)

// Command codes
const (
	CmdProbe     = 0x00
	CmdOpen      = 0x01
	CmdClose     = 0x02
	CmdEnergy    = 0x05
	CmdReadParam = 0x08
)

// ParamAuxiliary is the parameter number of the auxiliary readings block.
const ParamAuxiliary = 0x16

// Sub-indices (BWRI) of the auxiliary readings.
const (
	SubActivePower   = 0x00
	SubReactivePower = 0x08
	SubVoltage       = 0x11
	SubCurrent       = 0x21
	SubCosPhi        = 0x30
	SubFrequency     = 0x40
	SubAngle         = 0x51
)

// Scale factors of the packed readings.
const (
	ScaleVoltage   = 100.0
	ScaleCurrent   = 1000.0
	ScaleAngle     = 100.0
	ScaleFrequency = 100.0
	ScaleCosPhi    = 1000.0
	ScalePower     = 100.0
	ScaleEnergy    = 1000.0
)

// Session access defaults.
const (
	DefaultAccessLevel = 0x01
	PasswordSize       = 6
)

// DefaultPassword is the factory level-1 password.
var DefaultPassword = [PasswordSize]byte{0x01, 0x01, 0x01, 0x01, 0x01, 0x01}

// Period selects the accumulation period of energy counters.
type Period byte

// Energy periods
const (
	PeriodReset     Period = 0 // from reset
	PeriodThisYear  Period = 1
	PeriodLastYear  Period = 2
	PeriodMonth     Period = 3 // month given separately
	PeriodToday     Period = 4
	PeriodYesterday Period = 5
)

// String implements fmt.Stringer.
func (p Period) String() string {
	switch p {
	case PeriodReset:
		return "reset"
	case PeriodThisYear:
		return "this year"
	case PeriodLastYear:
		return "last year"
	case PeriodMonth:
		return "month"
	case PeriodToday:
		return "today"
	case PeriodYesterday:
		return "yesterday"
	}
	return fmt.Sprintf("period(%d)", byte(p))
}

// Meter status codes carried by status responses.
const (
	StatusOK                    = 0
	StatusIllegalCommand        = 1
	StatusInternalCounterError  = 2
	StatusPermissionDenied      = 3
	StatusClockAlreadyCorrected = 4
	StatusChannelNotOpen        = 5
)

// StatusError is a non-OK status byte returned by the meter.
type StatusError struct {
	Code byte
}

// Error converts known meter status code to error message.
func (e *StatusError) Error() string {
	var name string
	switch e.Code {
	case StatusIllegalCommand:
		name = "illegal command or parameter"
	case StatusInternalCounterError:
		name = "internal counter error"
	case StatusPermissionDenied:
		name = "permission denied"
	case StatusClockAlreadyCorrected:
		name = "clock already corrected"
	case StatusChannelNotOpen:
		name = "channel is not open"
	default:
		name = "unknown"
	}
	return fmt.Sprintf("mercury: meter status '%v' (%s)", e.Code, name)
}

// LogProvider RFC5424 log message levels only Debug and Error
type LogProvider interface {
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}
