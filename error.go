package mercury

import (
	"errors"
)

var (
	// ErrTimeout no response within the read bound.
	ErrTimeout = errors.New("mercury: response timeout")
	// ErrWrongResultSize response length differs from the expected shape.
	ErrWrongResultSize = errors.New("mercury: wrong result size")
	// ErrWrongCrc response checksum mismatch.
	ErrWrongCrc = errors.New("mercury: wrong crc")
	// ErrAddressMismatch response address differs from the request, only with WithAddressCheck.
	ErrAddressMismatch = errors.New("mercury: response address mismatch")
	// ErrChannelFailure the probe did not succeed, mains is likely off or the meter unreachable.
	ErrChannelFailure = errors.New("mercury: check channel failure")
	// ErrCommunication the channel failed while talking to the meter.
	ErrCommunication = errors.New("mercury: communication error")
	// ErrSessionNotOpen a read was issued outside an open session.
	ErrSessionNotOpen = errors.New("mercury: session is not open")
	// ErrLockUnavailable the shared bus lock could not be acquired.
	ErrLockUnavailable = errors.New("mercury: bus lock unavailable")
)

// ResultCode is the numeric outcome of a protocol call, as reported to
// formatting and daemon layers.
type ResultCode int

// Result codes. 1..5 are the meter's own status codes.
const (
	OK                    ResultCode = 0
	IllegalCommand        ResultCode = StatusIllegalCommand
	InternalCounterError  ResultCode = StatusInternalCounterError
	PermissionDenied      ResultCode = StatusPermissionDenied
	ClockAlreadyCorrected ResultCode = StatusClockAlreadyCorrected
	ChannelNotOpen        ResultCode = StatusChannelNotOpen
	WrongResultSize       ResultCode = 256
	WrongCrc              ResultCode = 257
	CheckChannelFailure   ResultCode = 258
	CommunicationError    ResultCode = 259
	LockUnavailable       ResultCode = 260
)

// Code maps err to its result code. nil is OK, anything unrecognised is a
// CommunicationError.
func Code(err error) ResultCode {
	if err == nil {
		return OK
	}
	var se *StatusError
	switch {
	case errors.Is(err, ErrLockUnavailable):
		return LockUnavailable
	case errors.Is(err, ErrChannelFailure):
		return CheckChannelFailure
	case errors.As(err, &se):
		return ResultCode(se.Code)
	case errors.Is(err, ErrWrongResultSize):
		return WrongResultSize
	case errors.Is(err, ErrWrongCrc):
		return WrongCrc
	case errors.Is(err, ErrSessionNotOpen):
		return ChannelNotOpen
	}
	return CommunicationError
}

// IsTimeout reports whether err is a response timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
