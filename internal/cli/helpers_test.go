package cli_test

import (
	"os"
	"path/filepath"
)

func mkdir(dir, name string) error {
	return os.Mkdir(filepath.Join(dir, name), 0o750)
}
