package digest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Stable(t *testing.T) {
	data := []byte("quarterly pricing sheet")
	assert.Equal(t, Bytes(data), Bytes([]byte("quarterly pricing sheet")))
	assert.Len(t, Bytes(data), 32)
}

func TestBytes_KnownValue(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Bytes(nil))
}

func TestBytes_SingleByteFlip(t *testing.T) {
	a := []byte("abcdefgh")
	b := []byte("abcdefgh")
	b[3] ^= 0x01
	assert.NotEqual(t, Bytes(a), Bytes(b))
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	sum, data, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Bytes([]byte("content")), sum)
	assert.Equal(t, []byte("content"), data)
}

func TestFile_Missing(t *testing.T) {
	_, _, err := File(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPointID(t *testing.T) {
	fileID := Bytes([]byte("doc"))

	assert.Equal(t, Bytes([]byte(fileID+"_0")), PointID(fileID, 0))
	assert.Equal(t, PointID(fileID, 1), PointID(fileID, 1))
	assert.NotEqual(t, PointID(fileID, 0), PointID(fileID, 1))
	assert.NotEqual(t, PointID(fileID, 0), PointID(Bytes([]byte("other")), 0))
}
