package util

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	projectRootDir     string
	projectRootDirOnce sync.Once
)

func osArgs0() string {
	if len(os.Args) == 0 {
		return ""
	}
	return os.Args[0]
}

// GetProjectRootDir returns PROJECT_ROOT_DIR if set, otherwise the closest
// parent of the working directory that contains a go.mod.
func GetProjectRootDir() string {
	projectRootDirOnce.Do(func() {
		if dir := GetEnv("PROJECT_ROOT_DIR", ""); dir != "" {
			projectRootDir = dir
			return
		}

		wd, err := os.Getwd()
		if err != nil {
			projectRootDir = "."
			return
		}

		dir := wd
		for {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				projectRootDir = dir
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				projectRootDir = wd
				return
			}
			dir = parent
		}
	})

	return projectRootDir
}
