package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/thinkgos/mercury236"
)

// Output formats
const (
	formatHuman = iota
	formatCSV
	formatJSON
)

func parseFormat(s string) (int, error) {
	switch s {
	case "human", "":
		return formatHuman, nil
	case "csv":
		return formatCSV, nil
	case "json":
		return formatJSON, nil
	}
	return 0, fmt.Errorf("invalid formatting %q", s)
}

// now is the timestamp source of CSV rows.
var now = time.Now

var csvHeader = []string{
	"DT",
	"U1", "U2", "U3",
	"I1", "I2", "I3",
	"P1", "P2", "P3", "Psum",
	"S1", "S2", "S3", "Ssum",
	"C1", "C2", "C3", "Csum",
	"F",
	"A1", "A2", "A3",
	"PRa", "PRTa1", "PRTa2", "PYa", "PTa",
}

func printOutput(w io.Writer, format int, o *mercury.OutputBlock, header bool) error {
	switch format {
	case formatCSV:
		return printCSV(w, o, header)
	case formatJSON:
		return printJSON(w, o)
	}
	return printHuman(w, o)
}

func printHuman(w io.Writer, o *mercury.OutputBlock) error {
	_, err := fmt.Fprintf(w,
		"  Voltage (V):                       %8.2f %8.2f %8.2f\n"+
			"  Current (A):                       %8.2f %8.2f %8.2f\n"+
			"  Cos(f):                            %8.2f %8.2f %8.2f (%8.2f)\n"+
			"  Frequency (Hz):                    %8.2f\n"+
			"  Phase angles (deg):                %8.2f %8.2f %8.2f\n"+
			"  Active power (W):                  %8.2f %8.2f %8.2f (%8.2f)\n"+
			"  Reactive power (VA):               %8.2f %8.2f %8.2f (%8.2f)\n"+
			"  Total consumed, all tariffs (KW):  %8.2f\n"+
			"    including day tariff (KW):       %8.2f\n"+
			"    including night tariff (KW):     %8.2f\n"+
			"  Yesterday consumed (KW):           %8.2f\n"+
			"  Today consumed (KW):               %8.2f\n",
		o.U.P1, o.U.P2, o.U.P3,
		o.I.P1, o.I.P2, o.I.P3,
		o.C.P1, o.C.P2, o.C.P3, o.C.Sum,
		o.F,
		o.A.P1, o.A.P2, o.A.P3,
		o.P.P1, o.P.P2, o.P.P3, o.P.Sum,
		o.S.P1, o.S.P2, o.S.P3, o.S.Sum,
		o.PR.AP, o.PRT[0].AP, o.PRT[1].AP,
		o.PY.AP,
		o.PT.AP,
	)
	return err
}

func printCSV(w io.Writer, o *mercury.OutputBlock, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
	}
	row := []string{now().Format("2006-01-02 15:04:05")}
	for _, v := range []float64{
		o.U.P1, o.U.P2, o.U.P3,
		o.I.P1, o.I.P2, o.I.P3,
		o.P.P1, o.P.P2, o.P.P3, o.P.Sum,
		o.S.P1, o.S.P2, o.S.P3, o.S.Sum,
		o.C.P1, o.C.P2, o.C.P3, o.C.Sum,
		o.F,
		o.A.P1, o.A.P2, o.A.P3,
		o.PR.AP, o.PRT[0].AP, o.PRT[1].AP,
		o.PY.AP,
		o.PT.AP,
	} {
		row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// fixed2 is a float marshalled with two decimals.
type fixed2 float64

func (f fixed2) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(math.Round(float64(f)*100)/100, 'f', 2, 64)), nil
}

type jsonP3V struct {
	P1 fixed2 `json:"p1"`
	P2 fixed2 `json:"p2"`
	P3 fixed2 `json:"p3"`
}

type jsonP3VS struct {
	P1  fixed2 `json:"p1"`
	P2  fixed2 `json:"p2"`
	P3  fixed2 `json:"p3"`
	Sum fixed2 `json:"sum"`
}

type jsonAP struct {
	AP fixed2 `json:"ap"`
}

type jsonOutput struct {
	U       jsonP3V  `json:"U"`
	I       jsonP3V  `json:"I"`
	CosF    jsonP3VS `json:"CosF"`
	F       fixed2   `json:"F"`
	A       jsonP3V  `json:"A"`
	P       jsonP3VS `json:"P"`
	S       jsonP3VS `json:"S"`
	PR      jsonAP   `json:"PR"`
	PRDay   jsonAP   `json:"PR-day"`
	PRNight jsonAP   `json:"PR-night"`
	PY      jsonAP   `json:"PY"`
	PT      jsonAP   `json:"PT"`
}

func toP3V(v mercury.P3V) jsonP3V {
	return jsonP3V{fixed2(v.P1), fixed2(v.P2), fixed2(v.P3)}
}

func toP3VS(v mercury.P3VS) jsonP3VS {
	return jsonP3VS{fixed2(v.P1), fixed2(v.P2), fixed2(v.P3), fixed2(v.Sum)}
}

func printJSON(w io.Writer, o *mercury.OutputBlock) error {
	return json.NewEncoder(w).Encode(jsonOutput{
		U:       toP3V(o.U),
		I:       toP3V(o.I),
		CosF:    toP3VS(o.C),
		F:       fixed2(o.F),
		A:       toP3V(o.A),
		P:       toP3VS(o.P),
		S:       toP3VS(o.S),
		PR:      jsonAP{fixed2(o.PR.AP)},
		PRDay:   jsonAP{fixed2(o.PRT[0].AP)},
		PRNight: jsonAP{fixed2(o.PRT[1].AP)},
		PY:      jsonAP{fixed2(o.PY.AP)},
		PT:      jsonAP{fixed2(o.PT.AP)},
	})
}
