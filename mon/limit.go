package mon

import (
	"os"
)

// DefaultApplianceValue is written to the appliance control file to switch
// the appliance off.
const DefaultApplianceValue = "0"

// PowerLimit switches an appliance off when the total reactive power of a
// poll exceeds Max. The appliance is driven through a control file, some
// other program watches it.
type PowerLimit struct {
	Max    float64 // W
	Path   string  // appliance control file
	Logger Logger
}

var _ Handler = (*PowerLimit)(nil)

// ProcResult implement interface Handler. The check runs on every poll,
// after a failed read the previous value is checked again.
func (sf *PowerLimit) ProcResult(_ error, result *Result) {
	power := result.Block.S.Sum
	if power <= sf.Max {
		return
	}
	sf.infof("maximum power exceeded (%8.2fW)", power)
	if sf.Path == "" {
		return
	}
	if err := os.WriteFile(sf.Path, []byte(DefaultApplianceValue), 0644); err != nil {
		sf.errorf("appliance %s: %v", sf.Path, err)
		return
	}
	sf.infof("appliance %s turned off", sf.Path)
}

func (sf *PowerLimit) infof(format string, v ...interface{}) {
	if sf.Logger != nil {
		sf.Logger.Infof(format, v...)
	}
}

func (sf *PowerLimit) errorf(format string, v ...interface{}) {
	if sf.Logger != nil {
		sf.Logger.Errorf(format, v...)
	}
}
