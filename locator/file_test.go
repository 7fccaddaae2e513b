package locator

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/funktionslust/goconsolidate"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFileLocatorLocate(t *testing.T) {
	// ARRANGE
	dir, err := ioutil.TempDir("", "locator")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "00000.tif")
	assert.Nil(t, ioutil.WriteFile(path, []byte("frame"), 0644))

	l := NewFileLocator()
	assert.Nil(t, goconsolidate.InitStorage(l, context.Background(), "run-1", zap.NewNop()))

	t.Run("ExistingFile", func(t *testing.T) {
		// ACT
		info, err := l.Locate("file://" + path)

		// ASSERT
		assert.Nil(t, err)
		assert.Equal(t, "file://"+path, info.URI)
		assert.Equal(t, int64(5), info.Size)
		assert.False(t, info.LastModified.IsZero())
	})
	t.Run("PlainPath", func(t *testing.T) {
		info, err := l.Locate(path)
		assert.Nil(t, err)
		assert.Equal(t, path, info.URI)
	})
	t.Run("MissingFile", func(t *testing.T) {
		_, err := l.Locate("file://" + filepath.Join(dir, "00001.tif"))
		assert.NotNil(t, err)
	})
}
