package physio

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// ReadSession decodes the five companion log files sharing the given
// base path, cross-checks them and assembles the final result. All
// five files must exist and agree on the session UUID; any
// inconsistency aborts the whole read with no partial result.
func ReadSession(base, version string) (*Session, error) {
	for _, kind := range append([]Kind{KindInfo}, waveformKinds...) {
		if _, err := os.Stat(kind.Path(base)); err != nil {
			return nil, fmt.Errorf("missing %s log: %w", kind, err)
		}
	}

	info, err := ParseInfoFile(KindInfo.Path(base), version)
	if err != nil {
		return nil, err
	}
	if info.LastTime <= info.FirstTime {
		return nil, fmt.Errorf("%s: ticks %d-%d: %w",
			KindInfo.Path(base), info.FirstTime, info.LastTime, ErrInvalidTimeRange)
	}
	actualSamples := int(info.LastTime - info.FirstTime + 1)
	numSamples := actualSamples + padSamples

	session := &Session{
		UUID:       info.UUID,
		NumSlices:  info.NumSlices,
		NumVolumes: info.NumVolumes,
		FirstTime:  info.FirstTime,
		LastTime:   info.LastTime,
		Timing:     info.Timing,
		Acq:        make([]uint8, numSamples),
		Channels:   make(map[string][]uint32),
	}

	for _, kind := range waveformKinds {
		path := kind.Path(base)
		wf, err := ParseWaveformFile(path, kind, version, info.FirstTime, numSamples)
		if err != nil {
			return nil, err
		}
		if wf.UUID != info.UUID {
			return nil, fmt.Errorf("%s: UUID %s, but %s has %s: %w",
				path, wf.UUID, KindInfo.Path(base), info.UUID, ErrUUIDMismatch)
		}
		for i, label := range wf.Labels {
			if hasSignal(wf.Samples[i]) {
				session.Channels[label] = wf.Samples[i]
			}
		}
	}

	for vol := range session.Timing.Filled {
		for slice, filled := range session.Timing.Filled[vol] {
			if !filled {
				continue
			}
			stop := int(session.Timing.Stop[vol][slice])
			if stop >= numSamples {
				stop = numSamples - 1
			}
			for t := int(session.Timing.Start[vol][slice]); t <= stop; t++ {
				session.Acq[t] = 1
			}
		}
	}

	log.Printf("Decoded session %s: %d slices, %d volumes, ticks %d-%d (%s samples, %s)",
		session.UUID, session.NumSlices, session.NumVolumes, session.FirstTime, session.LastTime,
		humanize.Comma(int64(actualSamples)), time.Duration(actualSamples)*TickDuration)
	return session, nil
}

// hasSignal reports whether a channel carried anything besides zeros.
func hasSignal(samples []uint32) bool {
	for _, v := range samples {
		if v != 0 {
			return true
		}
	}
	return false
}
