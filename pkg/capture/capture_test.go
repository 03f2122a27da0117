package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Record(SourceDatagram, 0, []byte("a")))
	require.NoError(t, w.Record(SourceStream, 3, []byte("hello")))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var r1, r2 Record
	require.NoError(t, dec.Decode(&r1))
	require.NoError(t, dec.Decode(&r2))

	require.Equal(t, SourceDatagram, r1.Source)
	require.Equal(t, []byte("a"), r1.Data)
	require.False(t, r1.Time.IsZero())
	require.Equal(t, SourceStream, r2.Source)
	require.EqualValues(t, 3, r2.Stream)
	require.Equal(t, []byte("hello"), r2.Data)

	var extra Record
	require.Error(t, dec.Decode(&extra))
}

func TestWriterAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Record(SourceDatagram, 0, []byte("one")))
	require.NoError(t, w.Close())

	w, err = NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Record(SourceDatagram, 0, []byte("two")))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var records []Record
	for {
		var r Record
		if err := dec.Decode(&r); err != nil {
			break
		}
		records = append(records, r)
	}
	require.Len(t, records, 2)
	require.Equal(t, []byte("one"), records[0].Data)
	require.Equal(t, []byte("two"), records[1].Data)
}
