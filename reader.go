package mercury

// Reader performs one read of an open session and stores the value into
// block on success.
type Reader func(c *Client, block *OutputBlock) error

// Readers of the auxiliary parameters.
var (
	ReadU Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadVoltage()
		if err == nil {
			block.U = v
		}
		return err
	}
	ReadI Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadCurrent()
		if err == nil {
			block.I = v
		}
		return err
	}
	ReadA Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadAngle()
		if err == nil {
			block.A = v
		}
		return err
	}
	ReadCosF Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadCosPhi()
		if err == nil {
			block.C = v
		}
		return err
	}
	ReadP Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadActivePower()
		if err == nil {
			block.P = v
		}
		return err
	}
	ReadS Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadReactivePower()
		if err == nil {
			block.S = v
		}
		return err
	}
	ReadF Reader = func(c *Client, block *OutputBlock) error {
		v, err := c.ReadFrequency()
		if err == nil {
			block.F = v
		}
		return err
	}
)

// ReadW returns a Reader of the energy counters for period, month and
// tariff, stored into the counters dst selects.
func ReadW(period Period, month, tariff byte, dst func(*OutputBlock) *PWV) Reader {
	return func(c *Client, block *OutputBlock) error {
		v, err := c.ReadEnergy(period, month, tariff)
		if err == nil {
			*dst(block) = v
		}
		return err
	}
}

// Readers of the energy counters.
var (
	// ReadPR counters from reset, all tariffs.
	ReadPR = ReadW(PeriodReset, 0, 0, func(b *OutputBlock) *PWV { return &b.PR })
	// ReadPY counters for yesterday.
	ReadPY = ReadW(PeriodYesterday, 0, 0, func(b *OutputBlock) *PWV { return &b.PY })
	// ReadPT counters for today.
	ReadPT = ReadW(PeriodToday, 0, 0, func(b *OutputBlock) *PWV { return &b.PT })
)

// ReadPRT returns a Reader of the counters from reset for tariff index
// i (0 based, meter tariff i+1), stored into PRT[i].
func ReadPRT(i int) Reader {
	return ReadW(PeriodReset, 0, byte(i+1), func(b *OutputBlock) *PWV { return &b.PRT[i] })
}

// DefaultReads is the full snapshot, in the order the meter is polled.
var DefaultReads = []Reader{
	ReadU, ReadI, ReadCosF, ReadF, ReadA, ReadP, ReadS,
	ReadPR, ReadPRT(0), ReadPRT(1), ReadPY, ReadPT,
}
