package mercury

// TariffNum number of tariffs the meter is configured with.
const TariffNum = 2

// P3V per-phase vector: voltage, current, phase angle.
type P3V struct {
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
	P3 float64 `json:"p3"`
}

// P3VS per-phase vector with the sum over all phases: cos(φ), power.
type P3VS struct {
	Sum float64 `json:"sum"`
	P1  float64 `json:"p1"`
	P2  float64 `json:"p2"`
	P3  float64 `json:"p3"`
}

// PWV energy counters.
type PWV struct {
	AP float64 `json:"ap"` // active +
	AM float64 `json:"am"` // active -
	RP float64 `json:"rp"` // reactive +
	RM float64 `json:"rm"` // reactive -
}

// MainsStatus reports whether the monitored line is powered.
type MainsStatus int

// Mains status
const (
	MainsOff MainsStatus = 0 // no response from the meter, mains is likely off
	MainsOn  MainsStatus = 1
)

// String implements fmt.Stringer.
func (ms MainsStatus) String() string {
	if ms == MainsOn {
		return "on"
	}
	return "off"
}

// OutputBlock is the snapshot of everything one session can read. Every
// field is written only by a successful read; check the read's error
// before trusting a field.
type OutputBlock struct {
	U   P3V            `json:"U"`   // voltage, V
	I   P3V            `json:"I"`   // current, A
	A   P3V            `json:"A"`   // phase angles, deg
	C   P3VS           `json:"C"`   // cos(φ)
	P   P3VS           `json:"P"`   // active power, W
	S   P3VS           `json:"S"`   // reactive power, VA
	PR  PWV            `json:"PR"`  // counters from reset, all tariffs, kWh
	PRT [TariffNum]PWV `json:"PRT"` // counters from reset by tariff
	PY  PWV            `json:"PY"`  // yesterday
	PT  PWV            `json:"PT"`  // today
	F   float64        `json:"F"`   // grid frequency, Hz
	MS  MainsStatus    `json:"MS"`
}
