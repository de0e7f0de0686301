// Package physio decodes the companion log files written by an MRI
// scanner's physiological monitoring unit (cardiac, respiratory,
// pulse-oximeter, external-trigger and acquisition-timing channels)
// into dense sample arrays aligned on the scanner's 2.5 ms tick clock.
package physio

import "time"

// LogVersion is the log format version this package understands.
const LogVersion = "EJA_1"

// TickDuration is the scanner clock resolution. All internal
// arithmetic stays in integer ticks; this constant maps ticks onto
// wall-clock time for reporting and export.
const TickDuration = 2500 * time.Microsecond

// padSamples extends every sample array past the last scan tick so a
// sample run starting at the final timestamp still fits.
const padSamples = 8

// Kind identifies one of the five companion log files of a session.
// The value is the LogDataType tag the file must declare.
type Kind string

const (
	KindInfo Kind = "ACQUISITION_INFO"
	KindECG  Kind = "ECG"
	KindResp Kind = "RESP"
	KindPuls Kind = "PULS"
	KindExt  Kind = "EXT"
)

// waveformKinds lists the signal file kinds in the order the session
// assembler reads them, after the info file.
var waveformKinds = []Kind{KindECG, KindResp, KindPuls, KindExt}

var fileSuffixes = map[Kind]string{
	KindInfo: "_Info.log",
	KindECG:  "_ECG.log",
	KindResp: "_RESP.log",
	KindPuls: "_PULS.log",
	KindExt:  "_EXT.log",
}

// Path returns the on-disk path of this log file for a session base
// path (the shared filename prefix of the five files).
func (k Kind) Path(base string) string {
	return base + fileSuffixes[k]
}

// channelLabels is the fixed channel vocabulary of each signal file
// kind. A data row naming any other channel is an error.
var channelLabels = map[Kind][]string{
	KindECG:  {"ECG1", "ECG2", "ECG3", "ECG4"},
	KindResp: {"RESP"},
	KindPuls: {"PULS"},
	KindExt:  {"EXT", "EXT2"},
}

// TimingMap records, per (volume, slice), the ticks during which that
// slice acquisition was active. Ticks are relative to the info file's
// FirstTime. Filled marks the cells an acquisition row was seen for;
// Start/Stop of unfilled cells are meaningless.
type TimingMap struct {
	Start  [][]uint32 // [volume][slice]
	Stop   [][]uint32
	Filled [][]bool
}

func newTimingMap(volumes, slices uint32) TimingMap {
	m := TimingMap{
		Start:  make([][]uint32, volumes),
		Stop:   make([][]uint32, volumes),
		Filled: make([][]bool, volumes),
	}
	for v := range m.Start {
		m.Start[v] = make([]uint32, slices)
		m.Stop[v] = make([]uint32, slices)
		m.Filled[v] = make([]bool, slices)
	}
	return m
}

// InfoLog is a decoded acquisition-timing (_Info.log) file.
type InfoLog struct {
	UUID       string
	NumSlices  uint32
	NumVolumes uint32
	FirstTime  uint32 // first scan tick, absolute
	LastTime   uint32 // last scan tick, absolute
	Timing     TimingMap
}

// WaveformLog is a decoded signal file: one dense sample array per
// channel, run-filled from the file's sparse timestamped events.
type WaveformLog struct {
	UUID       string
	Kind       Kind
	SampleTime uint32 // ticks covered by each reported sample
	Labels     []string
	Samples    [][]uint32 // [channel][tick], parallel to Labels
}

// Session is the assembled result of one scan's five log files.
type Session struct {
	UUID       string
	NumSlices  uint32
	NumVolumes uint32
	FirstTime  uint32
	LastTime   uint32
	Timing     TimingMap
	// Acq is 1 at every tick falling inside some slice acquisition
	// window, 0 elsewhere. Indexed by tick relative to FirstTime.
	Acq []uint8
	// Channels holds only the channels that carried signal: a channel
	// whose samples are uniformly zero is left out entirely.
	Channels map[string][]uint32
}
