package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Locator searches the usual Go binary locations for an executable
type Locator struct {
	// ToolsPath is searched first when set
	ToolsPath string

	// Getenv and LookPath default to os.Getenv and exec.LookPath
	Getenv   func(string) string
	LookPath func(string) (string, error)
}

// BinPath returns the absolute path of binary, searching in order the tools
// path, GOBIN, every GOPATH/bin (default ~/go/bin) and PATH. When nothing is
// found the bare binary name is returned, which callers detect by it not
// being absolute.
func (l Locator) BinPath(binary string) string {
	exe := binary
	if runtime.GOOS == "windows" && filepath.Ext(exe) != ".exe" {
		exe += ".exe"
	}

	for _, dir := range l.searchDirs() {
		candidate := filepath.Join(dir, exe)
		if isExecutableFile(candidate) {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
		}
	}

	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if found, err := lookPath(exe); err == nil {
		if abs, err := filepath.Abs(found); err == nil {
			return abs
		}
	}

	return binary
}

func (l Locator) searchDirs() []string {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var dirs []string
	if l.ToolsPath != "" {
		dirs = append(dirs, l.ToolsPath)
	}

	if gobin := getenv("GOBIN"); gobin != "" {
		dirs = append(dirs, gobin)
	}

	gopath := getenv("GOPATH")
	if gopath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			gopath = filepath.Join(home, "go")
		}
	}

	for _, root := range filepath.SplitList(gopath) {
		if root != "" {
			dirs = append(dirs, filepath.Join(root, "bin"))
		}
	}

	return dirs
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	if runtime.GOOS == "windows" {
		return true
	}

	return info.Mode()&0o111 != 0
}
