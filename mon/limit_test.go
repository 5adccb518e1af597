package mon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thinkgos/mercury236"
)

func TestPowerLimit_ProcResult(t *testing.T) {
	tests := []struct {
		name      string
		power     float64
		wantWrite bool
	}{
		{"below", 1500, false},
		{"at limit", 2000, false},
		{"above", 2000.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mainHeater")
			if err := os.WriteFile(path, []byte("1"), 0644); err != nil {
				t.Fatal(err)
			}
			logger := &recordLogger{}
			p := &PowerLimit{Max: 2000, Path: path, Logger: logger}
			p.ProcResult(nil, &Result{Block: mercury.OutputBlock{S: mercury.P3VS{Sum: tt.power}}})

			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			want := "1"
			if tt.wantWrite {
				want = DefaultApplianceValue
			}
			if string(b) != want {
				t.Errorf("appliance file = %q, want %q", b, want)
			}
			if got := len(logger.infos) > 0; got != tt.wantWrite {
				t.Errorf("logged = %v, want %v", got, tt.wantWrite)
			}
		})
	}
}

func TestPowerLimit_BadPath(t *testing.T) {
	logger := &recordLogger{}
	p := &PowerLimit{Max: 100, Path: filepath.Join(t.TempDir(), "missing", "file"), Logger: logger}
	p.ProcResult(nil, &Result{Block: mercury.OutputBlock{S: mercury.P3VS{Sum: 200}}})
	if len(logger.errs) != 1 {
		t.Errorf("errors logged = %q, want one", logger.errs)
	}
}
