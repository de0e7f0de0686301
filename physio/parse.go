package physio

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// dataRow is one 4-column record line, kept with its line number so
// errors can point at the offending record.
type dataRow struct {
	line   int
	fields []string
}

// scanLog reads a log file once and splits it into header assignments
// and data rows. Blank lines, `#` comments and textual column-label
// rows are dropped here, so the callers only see real content. Header
// keys may appear anywhere in the file; a repeated key keeps its last
// value.
func scanLog(path string) (map[string]string, []dataRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	hdr := make(map[string]string)
	var rows []dataRow
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i > 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		if key, value, ok := strings.Cut(line, "="); ok {
			hdr[strings.TrimSpace(key)] = strings.TrimSpace(value)
			continue
		}
		if line[0] < '0' || line[0] > '9' {
			// column-label row, e.g. "Time_tics Channel Value Signal"
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("%s:%d: %d columns, want 4: %w", path, lineNo, len(fields), ErrMalformedRow)
		}
		rows = append(rows, dataRow{line: lineNo, fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return hdr, rows, nil
}

// checkCommonHeader validates the fields every log kind must declare
// and returns the file's session UUID.
func checkCommonHeader(path string, hdr map[string]string, kind Kind, version string) (string, error) {
	v, ok := hdr["LogVersion"]
	if !ok {
		return "", fmt.Errorf("%s: LogVersion: %w", path, ErrMissingHeader)
	}
	if v != version {
		return "", fmt.Errorf("%s: LogVersion %q, want %q: %w", path, v, version, ErrVersionMismatch)
	}
	v, ok = hdr["LogDataType"]
	if !ok {
		return "", fmt.Errorf("%s: LogDataType: %w", path, ErrMissingHeader)
	}
	if v != string(kind) {
		return "", fmt.Errorf("%s: LogDataType %q, want %q: %w", path, v, kind, ErrDataTypeMismatch)
	}
	uuid := hdr["UUID"]
	if uuid == "" {
		return "", fmt.Errorf("%s: %w", path, ErrMissingUUID)
	}
	return uuid, nil
}

// rejectKeys fails when a header key belonging to the other file
// family shows up, which usually means a misnamed or shuffled file.
func rejectKeys(path string, hdr map[string]string, keys ...string) error {
	for _, key := range keys {
		if _, ok := hdr[key]; ok {
			return fmt.Errorf("%s: %s: %w", path, key, ErrMisplacedField)
		}
	}
	return nil
}

func headerUint(path string, hdr map[string]string, key string) (uint32, error) {
	v, ok := hdr[key]
	if !ok {
		return 0, fmt.Errorf("%s: %s: %w", path, key, ErrMissingHeader)
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %s = %q: %w", path, key, v, ErrBadHeaderValue)
	}
	return uint32(n), nil
}

func rowUint(path string, row dataRow, col int) (uint32, error) {
	n, err := strconv.ParseUint(row.fields[col], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s:%d: column %d %q: %w", path, row.line, col+1, row.fields[col], ErrMalformedRow)
	}
	return uint32(n), nil
}

// ParseInfoFile decodes an acquisition-timing (_Info.log) file. The
// returned timing map holds ticks relative to the file's FirstTime.
// version is the log format version the file must declare, normally
// LogVersion.
func ParseInfoFile(path, version string) (*InfoLog, error) {
	hdr, rows, err := scanLog(path)
	if err != nil {
		return nil, err
	}
	uuid, err := checkCommonHeader(path, hdr, KindInfo, version)
	if err != nil {
		return nil, err
	}
	if err := rejectKeys(path, hdr, "SampleTime"); err != nil {
		return nil, err
	}
	info := &InfoLog{UUID: uuid}
	for _, field := range []struct {
		key string
		dst *uint32
	}{
		{"NumSlices", &info.NumSlices},
		{"NumVolumes", &info.NumVolumes},
		{"FirstTime", &info.FirstTime},
		{"LastTime", &info.LastTime},
	} {
		if *field.dst, err = headerUint(path, hdr, field.key); err != nil {
			return nil, err
		}
	}
	info.Timing = newTimingMap(info.NumVolumes, info.NumSlices)
	for _, row := range rows {
		var rec [4]uint32
		for i := range rec {
			if rec[i], err = rowUint(path, row, i); err != nil {
				return nil, err
			}
		}
		vol, slice, start, stop := rec[0], rec[1], rec[2], rec[3]
		switch {
		case vol >= info.NumVolumes || slice >= info.NumSlices:
			return nil, fmt.Errorf("%s:%d: volume %d, slice %d outside declared %dx%d: %w",
				path, row.line, vol, slice, info.NumVolumes, info.NumSlices, ErrMalformedRow)
		case stop < start || start < info.FirstTime:
			return nil, fmt.Errorf("%s:%d: acquisition ticks %d-%d outside scan: %w",
				path, row.line, start, stop, ErrMalformedRow)
		case info.Timing.Filled[vol][slice]:
			return nil, fmt.Errorf("%s:%d: volume %d, slice %d: %w",
				path, row.line, vol, slice, ErrDuplicateRecord)
		}
		info.Timing.Start[vol][slice] = start - info.FirstTime
		info.Timing.Stop[vol][slice] = stop - info.FirstTime
		info.Timing.Filled[vol][slice] = true
	}
	return info, nil
}

// ParseWaveformFile decodes one signal file (_ECG, _RESP, _PULS or
// _EXT). Each event row writes its value into SampleTime consecutive
// ticks of its channel, starting at the event timestamp; overlapping
// events overwrite, last one wins. firstTime and numSamples come from
// the session's info file so all arrays share one time base; fills
// running past numSamples are clamped.
func ParseWaveformFile(path string, kind Kind, version string, firstTime uint32, numSamples int) (*WaveformLog, error) {
	labels := channelLabels[kind]
	if labels == nil {
		return nil, fmt.Errorf("%s: %q is not a signal log kind", path, kind)
	}
	hdr, rows, err := scanLog(path)
	if err != nil {
		return nil, err
	}
	uuid, err := checkCommonHeader(path, hdr, kind, version)
	if err != nil {
		return nil, err
	}
	if err := rejectKeys(path, hdr, "NumSlices", "NumVolumes", "FirstTime", "LastTime"); err != nil {
		return nil, err
	}
	sampleTime, err := headerUint(path, hdr, "SampleTime")
	if err != nil {
		return nil, err
	}
	if sampleTime == 0 {
		return nil, fmt.Errorf("%s: SampleTime must be positive: %w", path, ErrBadHeaderValue)
	}
	wf := &WaveformLog{
		UUID:       uuid,
		Kind:       kind,
		SampleTime: sampleTime,
		Labels:     labels,
		Samples:    make([][]uint32, len(labels)),
	}
	for i := range wf.Samples {
		wf.Samples[i] = make([]uint32, numSamples)
	}
	for _, row := range rows {
		// columns: timestamp, channel, value, trigger (unused)
		ts, err := rowUint(path, row, 0)
		if err != nil {
			return nil, err
		}
		value, err := rowUint(path, row, 2)
		if err != nil {
			return nil, err
		}
		ch := slices.Index(labels, row.fields[1])
		if ch < 0 {
			return nil, fmt.Errorf("%s:%d: channel %q: %w", path, row.line, row.fields[1], ErrInvalidChannel)
		}
		if ts < firstTime {
			return nil, fmt.Errorf("%s:%d: timestamp %d before scan start %d: %w",
				path, row.line, ts, firstTime, ErrMalformedRow)
		}
		start := int(ts - firstTime)
		end := start + int(sampleTime)
		if end > numSamples {
			end = numSamples
		}
		for t := start; t < end; t++ {
			wf.Samples[ch][t] = value
		}
	}
	return wf, nil
}
