package mercury

import (
	"time"
)

// fakeMeter answers requests like a Mercury 236 on the other end of the line.
type fakeMeter struct {
	address  byte              // address put into responses
	status   map[byte]byte     // command -> status byte, default StatusOK
	params   map[byte][]uint32 // sub-index -> raw values
	energy   []uint32          // raw ap, am, rp, rm
	silent   map[byte]bool     // command -> no response
	corrupt  map[byte]bool     // command -> flip a bit of the response
	garble   map[byte]bool     // sub-index -> flip a bit of the response
	chunk    int               // bytes returned per Read, 0 all
	writeErr error
	readErr  error

	requests [][]byte
	pending  []byte
	deadline time.Time
}

func newFakeMeter() *fakeMeter {
	return &fakeMeter{
		status: map[byte]byte{},
		params: map[byte][]uint32{
			SubVoltage:       {23015, 22987, 23102},
			SubCurrent:       {1250, 980, 3},
			SubAngle:         {0, 12000, 24000},
			SubCosPhi:        {950, 960, 970, 920},
			SubFrequency:     {5001},
			SubActivePower:   {287000, 95000, 102000, 90000},
			SubReactivePower: {31000, 10000, 11000, 10000},
		},
		energy:  []uint32{12345678, 0, 1000, 42},
		silent:  map[byte]bool{},
		corrupt: map[byte]bool{},
		garble:  map[byte]bool{},
	}
}

func (m *fakeMeter) Write(b []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.requests = append(m.requests, append([]byte{}, b...))
	m.pending = m.respond(b)
	return len(b), nil
}

func (m *fakeMeter) Read(b []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if len(m.pending) == 0 {
		return 0, ErrTimeout
	}
	n := len(m.pending)
	if m.chunk > 0 && n > m.chunk {
		n = m.chunk
	}
	n = copy(b, m.pending[:n])
	m.pending = m.pending[n:]
	return n, nil
}

func (m *fakeMeter) respond(req []byte) []byte {
	if len(req) < 4 || CRC16(req[:len(req)-2]) != uint16(req[len(req)-2])|uint16(req[len(req)-1])<<8 {
		return nil
	}
	cmd := req[1]
	if m.silent[cmd] {
		return nil
	}
	var adu []byte
	bad := m.corrupt[cmd]
	switch cmd {
	case CmdProbe, CmdOpen, CmdClose:
		adu = frameOf(m.address, []byte{m.status[cmd]})
	case CmdReadParam:
		bad = bad || m.garble[req[3]]
		var fields [][]byte
		for _, v := range m.params[req[3]] {
			fields = append(fields, pack3(v))
		}
		adu = frameOf(m.address, fields...)
	case CmdEnergy:
		var fields [][]byte
		for _, v := range m.energy {
			fields = append(fields, pack4(v))
		}
		adu = frameOf(m.address, fields...)
	default:
		return nil
	}
	if bad {
		adu[1] ^= 0x04
	}
	return adu
}

// commands returns the command byte of every request received.
func (m *fakeMeter) commands() []byte {
	cmds := make([]byte, 0, len(m.requests))
	for _, r := range m.requests {
		cmds = append(cmds, r[1])
	}
	return cmds
}

// deadlineMeter is a fakeMeter that records read deadlines like a net.Conn.
type deadlineMeter struct {
	*fakeMeter
	deadlines int
}

func (m *deadlineMeter) SetReadDeadline(t time.Time) error {
	m.deadlines++
	m.deadline = t
	return nil
}
