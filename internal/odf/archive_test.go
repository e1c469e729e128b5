package odf

import (
	"archive/zip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.ods")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	zw := zip.NewWriter(file)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return path
}

func TestExtractContent(t *testing.T) {
	path := writeArchive(t, map[string]string{
		MimetypeName: SpreadsheetMimetype,
		ContentName:  "<office:document-content/>",
	})

	archive, err := Open(path)
	require.NoError(t, err)
	defer archive.Close()

	assert.True(t, archive.IsSpreadsheet())
	assert.Equal(t, SpreadsheetMimetype, archive.Mimetype())

	dir, err := NewStagingDir(t.TempDir())
	require.NoError(t, err)

	payload, err := archive.Extract(dir)
	require.NoError(t, err)
	require.True(t, payload.Found())
	assert.Equal(t, filepath.Join(dir, ContentName), payload.Path)

	data, err := os.ReadFile(payload.Path)
	require.NoError(t, err)
	assert.Equal(t, "<office:document-content/>", string(data))

	require.NoError(t, payload.Remove())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, payload.Remove(), "second Remove")
}

func TestExtractWithoutContent(t *testing.T) {
	path := writeArchive(t, map[string]string{
		MimetypeName: "application/vnd.oasis.opendocument.text",
		"styles.xml": "<styles/>",
	})

	archive, err := Open(path)
	require.NoError(t, err)
	defer archive.Close()

	assert.False(t, archive.IsSpreadsheet())

	dir, err := NewStagingDir(t.TempDir())
	require.NoError(t, err)

	payload, err := archive.Extract(dir)
	require.NoError(t, err)
	assert.False(t, payload.Found())
	assert.Equal(t, dir, payload.Dir)
}

func TestOpenMissingMimetype(t *testing.T) {
	path := writeArchive(t, map[string]string{ContentName: "<a/>"})

	archive, err := Open(path)
	require.NoError(t, err)
	defer archive.Close()

	assert.Equal(t, "", archive.Mimetype())
}

func TestOpenNotArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.ods")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNotArchive)
	assert.NotErrorIs(t, err, ErrOLEContainer)
}

func TestOpenOLEContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.ods")
	require.NoError(t, os.WriteFile(path, oleSignature, 0o600))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrOLEContainer)
	assert.ErrorContains(t, err, "(damaged compound file)")
}

const (
	sectorSize = 512
	freeSect   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF
)

// writeCompoundFile writes a version 3 compound file of three sectors:
// the header, one FAT sector and one directory sector holding the root
// entry and a single empty stream named stream.
func writeCompoundFile(t *testing.T, stream string) string {
	t.Helper()

	data := make([]byte, 3*sectorSize)
	le := binary.LittleEndian

	header := data[:sectorSize]
	copy(header, oleSignature)
	le.PutUint16(header[24:], 0x003E) // minor version
	le.PutUint16(header[26:], 0x0003) // major version
	le.PutUint16(header[28:], 0xFFFE) // byte order
	le.PutUint16(header[30:], 9)      // sector shift
	le.PutUint16(header[32:], 6)      // mini sector shift
	le.PutUint32(header[44:], 1)      // FAT sectors
	le.PutUint32(header[48:], 1)      // first directory sector
	le.PutUint32(header[56:], 0x1000) // mini stream cutoff
	le.PutUint32(header[60:], endOfChain)
	le.PutUint32(header[68:], endOfChain)
	le.PutUint32(header[76:], 0) // DIFAT[0]: FAT lives in sector 0
	for off := 80; off < sectorSize; off += 4 {
		le.PutUint32(header[off:], freeSect)
	}

	fat := data[sectorSize : 2*sectorSize]
	for off := 0; off < sectorSize; off += 4 {
		le.PutUint32(fat[off:], freeSect)
	}
	le.PutUint32(fat[0:], fatSect)
	le.PutUint32(fat[4:], endOfChain)

	dir := data[2*sectorSize:]
	putDirEntry(dir[0:128], "Root Entry", 5, 1)
	putDirEntry(dir[128:256], stream, 2, noStream)
	putDirEntry(dir[256:384], "", 0, noStream)
	putDirEntry(dir[384:512], "", 0, noStream)

	path := filepath.Join(t.TempDir(), "compound.ods")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func putDirEntry(entry []byte, name string, objectType byte, child uint32) {
	le := binary.LittleEndian

	if name != "" {
		units := utf16.Encode([]rune(name))
		for i, u := range units {
			le.PutUint16(entry[i*2:], u)
		}
		le.PutUint16(entry[64:], uint16((len(units)+1)*2))
	}
	entry[66] = objectType
	if objectType != 0 {
		entry[67] = 1 // black
	}
	le.PutUint32(entry[68:], noStream)
	le.PutUint32(entry[72:], noStream)
	le.PutUint32(entry[76:], child)
	le.PutUint32(entry[116:], endOfChain)
}

func TestOpenOLEContainerKinds(t *testing.T) {
	tests := []struct {
		stream string
		kind   string
	}{
		{stream: "EncryptedPackage", kind: "(encrypted package)"},
		{stream: "Workbook", kind: "(legacy binary workbook)"},
		{stream: "Book", kind: "(legacy binary workbook)"},
		{stream: "SummaryInformation", kind: "(compound file)"},
	}

	for _, tt := range tests {
		t.Run(tt.stream, func(t *testing.T) {
			_, err := Open(writeCompoundFile(t, tt.stream))
			require.ErrorIs(t, err, ErrOLEContainer)
			assert.ErrorContains(t, err, tt.kind)
		})
	}
}

func TestNewStagingDirFails(t *testing.T) {
	_, err := NewStagingDir(filepath.Join(t.TempDir(), "missing", "parent"))
	assert.Error(t, err)
}
