package locator

import (
	"fmt"
	"os"
	"strings"

	"github.com/funktionslust/goconsolidate"
)

// NewFileLocator returns a new instance of the FileLocator.
func NewFileLocator() *FileLocator {
	return &FileLocator{}
}

// FileLocator resolves file:// and plain-path asset URIs against the local
// filesystem. It only stats files; the data bytes are never read.
type FileLocator struct {
	goconsolidate.BaseStorage
}

// Setup contains the storage preparations. The FileLocator needs none.
func (l *FileLocator) Setup() error {
	return nil
}

// Locate resolves the passed URI to its location metadata, failing when no
// file exists there.
func (l *FileLocator) Locate(uri string) (*goconsolidate.AssetInfo, error) {
	path := strings.TrimPrefix(uri, "file://")
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to locate asset %s: %v", uri, err)
	}
	return &goconsolidate.AssetInfo{
		URI:          uri,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}
