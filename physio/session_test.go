package physio_test

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedpearson/physio-importer/physio"
)

// writeSessionFiles lays down a consistent five-file session and
// returns its base path. overrides replaces the full content of
// individual files.
func writeSessionFiles(t *testing.T, id string, overrides map[physio.Kind]string) string {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "scan")
	contents := map[physio.Kind]string{
		physio.KindInfo: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = ACQUISITION_INFO
UUID = %s
NumSlices = 2
NumVolumes = 1
FirstTime = 100
LastTime = 109

Volume_ID Slice_ID AcqStart_Tics AcqStop_Tics
0 0 100 103
0 1 105 107
`, id),
		physio.KindECG: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = ECG
UUID = %s
SampleTime = 1
102 ECG1 42 0
103 ECG2 13 0
104 ECG3 0 0
`, id),
		physio.KindResp: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = RESP
UUID = %s
SampleTime = 3
105 RESP 7 0
`, id),
		physio.KindPuls: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = PULS
UUID = %s
SampleTime = 3
104 PULS 9 0
`, id),
		physio.KindExt: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = EXT
UUID = %s
SampleTime = 1
106 EXT 1 0
107 EXT2 0 0
`, id),
	}
	for kind, content := range overrides {
		contents[kind] = content
	}
	for kind, content := range contents {
		require.NoError(t, os.WriteFile(kind.Path(base), []byte(content), 0o644))
	}
	return base
}

func TestReadSession(t *testing.T) {
	id := uuid.NewString()
	base := writeSessionFiles(t, id, nil)

	session, err := physio.ReadSession(base, physio.LogVersion)
	require.NoError(t, err)

	assert.Equal(t, id, session.UUID)
	assert.Equal(t, uint32(2), session.NumSlices)
	assert.Equal(t, uint32(1), session.NumVolumes)
	assert.Equal(t, uint32(100), session.FirstTime)
	assert.Equal(t, uint32(109), session.LastTime)

	// 109-100+1 samples plus the 8-tick pad
	require.Len(t, session.Acq, 18)
	for tick, active := range session.Acq {
		if tick <= 3 || (tick >= 5 && tick <= 7) {
			assert.Equal(t, uint8(1), active, "tick %d", tick)
		} else {
			assert.Zero(t, active, "tick %d", tick)
		}
	}

	// only channels with signal survive
	assert.ElementsMatch(t, []string{"ECG1", "ECG2", "RESP", "PULS", "EXT"}, channelNames(session))
	assert.Equal(t, uint32(42), session.Channels["ECG1"][2])
	assert.Equal(t, uint32(13), session.Channels["ECG2"][3])
	assert.Equal(t, []uint32{7, 7, 7}, session.Channels["RESP"][5:8])
	assert.Equal(t, uint32(9), session.Channels["PULS"][4])
	assert.Equal(t, uint32(1), session.Channels["EXT"][6])
}

func channelNames(session *physio.Session) []string {
	names := make([]string, 0, len(session.Channels))
	for name := range session.Channels {
		names = append(names, name)
	}
	return names
}

func TestReadSessionUUIDMismatch(t *testing.T) {
	base := writeSessionFiles(t, uuid.NewString(), map[physio.Kind]string{
		physio.KindResp: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = RESP
UUID = %s
SampleTime = 3
`, uuid.NewString()),
	})
	_, err := physio.ReadSession(base, physio.LogVersion)
	assert.ErrorIs(t, err, physio.ErrUUIDMismatch)
	assert.ErrorContains(t, err, "_RESP.log")
}

func TestReadSessionInvalidTimeRange(t *testing.T) {
	id := uuid.NewString()
	base := writeSessionFiles(t, id, map[physio.Kind]string{
		physio.KindInfo: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = ACQUISITION_INFO
UUID = %s
NumSlices = 2
NumVolumes = 1
FirstTime = 100
LastTime = 100
`, id),
		// garbage in a signal file proves the time range check fires
		// before any signal file is parsed
		physio.KindECG: "LogVersion = nonsense\n",
	})
	_, err := physio.ReadSession(base, physio.LogVersion)
	assert.ErrorIs(t, err, physio.ErrInvalidTimeRange)
}

func TestReadSessionMissingFile(t *testing.T) {
	base := writeSessionFiles(t, uuid.NewString(), nil)
	require.NoError(t, os.Remove(physio.KindPuls.Path(base)))

	_, err := physio.ReadSession(base, physio.LogVersion)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorContains(t, err, "PULS")
}

func TestReadSessionDuplicateTiming(t *testing.T) {
	id := uuid.NewString()
	base := writeSessionFiles(t, id, map[physio.Kind]string{
		physio.KindInfo: fmt.Sprintf(`LogVersion = EJA_1
LogDataType = ACQUISITION_INFO
UUID = %s
NumSlices = 2
NumVolumes = 1
FirstTime = 100
LastTime = 109
0 0 100 103
0 0 105 107
`, id),
	})
	_, err := physio.ReadSession(base, physio.LogVersion)
	assert.ErrorIs(t, err, physio.ErrDuplicateRecord)
}
