package lookup

import (
	"context"
	"os"
)

// FileSource reads the workbook from a local path on every refresh.
func FileSource(path string) Source {
	return func(ctx context.Context) ([]byte, error) {
		return os.ReadFile(path)
	}
}
