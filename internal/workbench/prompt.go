package workbench

import "path/filepath"

// PrompterFunc adapts a function to the save-destination prompt. It returns
// the chosen file and false when the user cancelled.
type PrompterFunc func(defaultDir, name string) (string, bool)

// SaveDestination implements the session prompt.
func (f PrompterFunc) SaveDestination(defaultDir, name string) (string, bool) {
	return f(defaultDir, name)
}

// FixedDestination answers every prompt with path. A relative path is placed
// in the suggested folder; an empty path cancels.
func FixedDestination(path string) PrompterFunc {
	return func(defaultDir, _ string) (string, bool) {
		if path == "" {
			return "", false
		}
		if !filepath.IsAbs(path) && defaultDir != "" {
			return filepath.Join(defaultDir, path), true
		}
		return path, true
	}
}

// Cancel cancels every prompt.
var Cancel = PrompterFunc(func(string, string) (string, bool) { return "", false })
