package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/thinkgos/mercury236"
)

func sampleBlock() *mercury.OutputBlock {
	o := &mercury.OutputBlock{
		U:  mercury.P3V{P1: 230.15, P2: 229.87, P3: 231.02},
		I:  mercury.P3V{P1: 1.25, P2: 0.98, P3: 0.003},
		A:  mercury.P3V{P1: 0, P2: 120, P3: 240},
		C:  mercury.P3VS{Sum: 0.95, P1: 0.96, P2: 0.97, P3: 0.92},
		P:  mercury.P3VS{Sum: 2870, P1: 950, P2: 1020, P3: 900},
		S:  mercury.P3VS{Sum: 310, P1: 100, P2: 110, P3: 100},
		PR: mercury.PWV{AP: 12345.678},
		PY: mercury.PWV{AP: 10.5},
		PT: mercury.PWV{AP: 3.25},
		F:  50.01,
	}
	o.PRT[0].AP = 8000.1
	o.PRT[1].AP = 4345.578
	return o
}

func Test_parseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", formatHuman, false},
		{"human", formatHuman, false},
		{"csv", formatCSV, false},
		{"json", formatJSON, false},
		{"xml", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("parseFormat() = %v, %v, want %v, err %v", got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func Test_printJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printOutput(&buf, formatJSON, sampleBlock(), false); err != nil {
		t.Fatal(err)
	}
	want := `{"U":{"p1":230.15,"p2":229.87,"p3":231.02},` +
		`"I":{"p1":1.25,"p2":0.98,"p3":0.00},` +
		`"CosF":{"p1":0.96,"p2":0.97,"p3":0.92,"sum":0.95},` +
		`"F":50.01,` +
		`"A":{"p1":0.00,"p2":120.00,"p3":240.00},` +
		`"P":{"p1":950.00,"p2":1020.00,"p3":900.00,"sum":2870.00},` +
		`"S":{"p1":100.00,"p2":110.00,"p3":100.00,"sum":310.00},` +
		`"PR":{"ap":12345.68},"PR-day":{"ap":8000.10},"PR-night":{"ap":4345.58},` +
		`"PY":{"ap":10.50},"PT":{"ap":3.25}}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("printJSON() =\n%s\nwant\n%s", got, want)
	}
}

func Test_printCSV(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 3, 9, 7, 5, 1, 0, time.Local) }
	defer func() { now = time.Now }()

	var buf bytes.Buffer
	if err := printOutput(&buf, formatCSV, sampleBlock(), true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	header, row := strings.Split(lines[0], ","), strings.Split(lines[1], ",")
	if len(header) != len(row) {
		t.Errorf("header has %d columns, row %d", len(header), len(row))
	}
	if row[0] != "2024-03-09 07:05:01" {
		t.Errorf("timestamp = %q", row[0])
	}
	if row[1] != "230.15" || row[len(row)-1] != "3.25" {
		t.Errorf("row = %v", row)
	}

	buf.Reset()
	if err := printOutput(&buf, formatCSV, sampleBlock(), false); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("csv without header = %q", buf.String())
	}
}

func Test_printHuman(t *testing.T) {
	var buf bytes.Buffer
	if err := printOutput(&buf, formatHuman, sampleBlock(), false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		"Voltage (V):", "  230.15   229.87   231.02",
		"Reactive power (VA):", "(  310.00)",
		"including night tariff (KW):", "4345.58",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output misses %q:\n%s", s, out)
		}
	}
	if strings.Count(out, "\n") != 12 {
		t.Errorf("lines = %d, want 12", strings.Count(out, "\n"))
	}
}
