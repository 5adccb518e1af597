package mercury

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State of the meter-side session as seen by the client.
type State int

// Session states
const (
	StateIdle State = iota
	StateChannelVerified
	StateSessionOpen
	StateSessionClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChannelVerified:
		return "channel verified"
	case StateSessionOpen:
		return "session open"
	case StateSessionClosed:
		return "session closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Locker is the shared bus lock. Lock blocks until the bus is free or ctx
// is done.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
}

// Client talks to one meter over a caller-owned channel. The expected
// sequence is CheckChannel, InitConnection, reads, CloseConnection, all
// while holding the bus lock; see Collect.
type Client struct {
	clogs
	ch           Channel
	address      byte
	accessLevel  byte
	password     [PasswordSize]byte
	timeout      time.Duration
	delay        time.Duration
	checkAddress bool
	locker       Locker

	mu      sync.Mutex // one frame exchange at a time
	session sync.Mutex // one Exclusive sequence at a time
	state   State
}

// NewClient creates a new meter client on ch. ch is neither opened nor
// closed by the client.
func NewClient(ch Channel, opts ...Option) *Client {
	c := &Client{
		clogs:       newClogWithPrefix("mercury236 => "),
		ch:          ch,
		address:     DefaultAddress,
		accessLevel: DefaultAccessLevel,
		password:    DefaultPassword,
		timeout:     DefaultTimeout,
		delay:       DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the meter address.
func (sf *Client) Address() byte { return sf.address }

// State returns the current session state.
func (sf *Client) State() State {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.state
}

func (sf *Client) setState(s State) {
	sf.mu.Lock()
	sf.state = s
	sf.mu.Unlock()
}

// roundTrip exchanges request and validates the response against shape.
func (sf *Client) roundTrip(request []byte, shape Shape) ([]byte, error) {
	aduResponse, err := sf.exchange(request, shape.Size())
	if err != nil {
		return nil, err
	}
	if err = CheckResult(shape, aduResponse); err != nil {
		sf.Errorf("%v", err)
		return nil, err
	}
	if sf.checkAddress && aduResponse[0] != sf.address {
		return nil, fmt.Errorf("%w: response address '%v' does not match request '%v'",
			ErrAddressMismatch, aduResponse[0], sf.address)
	}
	return aduResponse, nil
}

// status exchanges a command answered by a status response.
func (sf *Client) status(request []byte) error {
	aduResponse, err := sf.roundTrip(request, ShapeStatus)
	if err != nil {
		return err
	}
	if code := aduResponse[addressSize]; code != StatusOK {
		return &StatusError{code}
	}
	return nil
}

// CheckChannel probes the meter. Any failure leaves the client idle and is
// reported as ErrChannelFailure: usually the mains is off, since the meter
// is powered by the line it measures.
//  Request:  addr, 0x00, CRC
//  Response: addr, status, CRC
func (sf *Client) CheckChannel() error {
	if err := sf.status(encodeProbe(sf.address)); err != nil {
		sf.setState(StateIdle)
		return fmt.Errorf("%w: %w", ErrChannelFailure, err)
	}
	sf.setState(StateChannelVerified)
	return nil
}

// InitConnection opens a session with the configured access level and
// password. The channel must have been verified first.
//  Request:  addr, 0x01, level, password[6], CRC
//  Response: addr, status, CRC
func (sf *Client) InitConnection() error {
	if sf.State() == StateIdle {
		return fmt.Errorf("%w: channel not verified", ErrChannelFailure)
	}
	if err := sf.status(encodeOpen(sf.address, sf.accessLevel, sf.password)); err != nil {
		return err
	}
	sf.setState(StateSessionOpen)
	return nil
}

// CloseConnection ends the session. The client considers the session closed
// whatever the outcome.
//  Request:  addr, 0x02, CRC
//  Response: addr, status, CRC
func (sf *Client) CloseConnection() error {
	err := sf.status(encodeClose(sf.address))
	if sf.State() != StateIdle {
		sf.setState(StateSessionClosed)
	}
	return err
}

// readFields reads one numeric response of shape and decodes it with scale.
func (sf *Client) readFields(request []byte, shape Shape, scale float64) ([]float64, error) {
	if sf.State() != StateSessionOpen {
		return nil, ErrSessionNotOpen
	}
	aduResponse, err := sf.roundTrip(request, shape)
	if err != nil {
		return nil, err
	}
	return decodeFields(shape, aduResponse, scale), nil
}

func (sf *Client) readP3V(subIndex byte, scale float64) (P3V, error) {
	v, err := sf.readFields(encodeReadParam(sf.address, subIndex), Shape3x3b, scale)
	if err != nil {
		return P3V{}, err
	}
	return P3V{P1: v[0], P2: v[1], P3: v[2]}, nil
}

func (sf *Client) readP3VS(subIndex byte, scale float64) (P3VS, error) {
	v, err := sf.readFields(encodeReadParam(sf.address, subIndex), Shape4x3b, scale)
	if err != nil {
		return P3VS{}, err
	}
	return P3VS{Sum: v[0], P1: v[1], P2: v[2], P3: v[3]}, nil
}

// ReadVoltage reads voltage by phases, V.
func (sf *Client) ReadVoltage() (P3V, error) {
	return sf.readP3V(SubVoltage, ScaleVoltage)
}

// ReadCurrent reads current by phases, A.
func (sf *Client) ReadCurrent() (P3V, error) {
	return sf.readP3V(SubCurrent, ScaleCurrent)
}

// ReadAngle reads the angles between phases, deg.
func (sf *Client) ReadAngle() (P3V, error) {
	return sf.readP3V(SubAngle, ScaleAngle)
}

// ReadCosPhi reads the power factor by phases with the total.
func (sf *Client) ReadCosPhi() (P3VS, error) {
	return sf.readP3VS(SubCosPhi, ScaleCosPhi)
}

// ReadActivePower reads active power by phases with the total, W.
func (sf *Client) ReadActivePower() (P3VS, error) {
	return sf.readP3VS(SubActivePower, ScalePower)
}

// ReadReactivePower reads reactive power by phases with the total, VA.
func (sf *Client) ReadReactivePower() (P3VS, error) {
	return sf.readP3VS(SubReactivePower, ScalePower)
}

// ReadFrequency reads the grid frequency, Hz.
func (sf *Client) ReadFrequency() (float64, error) {
	v, err := sf.readFields(encodeReadParam(sf.address, SubFrequency), Shape3b, ScaleFrequency)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadEnergy reads the energy counters accumulated over period, kWh.
// month is used with PeriodMonth only, tariff 0 means all tariffs and n
// tariff #n.
//  Request:  addr, 0x05, period<<4|month, tariff, CRC
//  Response: addr, ap[4], am[4], rp[4], rm[4], CRC
func (sf *Client) ReadEnergy(period Period, month, tariff byte) (PWV, error) {
	v, err := sf.readFields(encodeEnergy(sf.address, period, month, tariff), Shape4x4b, ScaleEnergy)
	if err != nil {
		return PWV{}, err
	}
	return PWV{AP: v[0], AM: v[1], RP: v[2], RM: v[3]}, nil
}

// Exclusive runs fn holding the shared bus lock. If the lock cannot be
// acquired fn is not run. Without a Locker fn runs directly.
func (sf *Client) Exclusive(ctx context.Context, fn func() error) error {
	sf.session.Lock()
	defer sf.session.Unlock()

	if sf.locker == nil {
		return fn()
	}
	if err := sf.locker.Lock(ctx); err != nil {
		if errors.Is(err, ErrLockUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}
	defer func() {
		if err := sf.locker.Unlock(); err != nil {
			sf.Errorf("bus unlock: %v", err)
		}
	}()
	return fn()
}

// Conversation opens a session, runs reads into block until the first
// failure and always closes the session. It returns the first failure; a
// failing close is only logged.
func (sf *Client) Conversation(block *OutputBlock, reads ...Reader) error {
	err := sf.InitConnection()
	for i := 0; err == nil && i < len(reads); i++ {
		err = reads[i](sf, block)
	}
	if sf.State() == StateIdle {
		return err
	}
	if closeErr := sf.CloseConnection(); closeErr != nil {
		sf.Errorf("close session: %v", closeErr)
	}
	return err
}

// Collect runs a whole sequence under the bus lock: probe, open, reads,
// close. The mains status of block follows the probe. A failed probe skips
// everything else.
func (sf *Client) Collect(ctx context.Context, block *OutputBlock, reads ...Reader) error {
	return sf.Exclusive(ctx, func() error {
		if err := sf.CheckChannel(); err != nil {
			block.MS = MainsOff
			return err
		}
		block.MS = MainsOn
		return sf.Conversation(block, reads...)
	})
}
