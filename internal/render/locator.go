package render

import (
	"os"
	"path/filepath"
)

// Well-known renderer locations, searched in this order.
const (
	LayerBinaryPath   = "/opt/bin/wkhtmltopdf"
	LayerFontsPath    = "/opt/fonts"
	BundledBinaryPath = "bin/wkhtmltopdf"
	BundledFontsDir   = "fonts"
	SystemBinaryPath  = "/usr/bin/wkhtmltopdf"
	SystemFontsPath   = "/usr/share/fonts"
)

// Executable is a renderer binary and the fontconfig directory it runs with.
type Executable struct {
	Path           string
	FontConfigPath string
}

// Environment is what Locate searches. It is read once at startup.
type Environment struct {
	// ExplicitPath, when set, is used without probing.
	ExplicitPath      string
	ExplicitFontsPath string
	// TaskRoot is the platform's function root holding a bundled binary.
	TaskRoot string
	// Exists reports whether a path exists. Defaults to os.Stat.
	Exists func(path string) bool
}

// Locate picks the renderer: the optional layer, then a binary bundled under
// the task root, then the system install. The result always has a path even
// if nothing exists there; running it then fails with a spawn error.
func Locate(env Environment) Executable {
	exists := env.Exists
	if exists == nil {
		exists = fileExists
	}

	if env.ExplicitPath != "" {
		fonts := env.ExplicitFontsPath
		if fonts == "" {
			fonts = SystemFontsPath
		}
		return Executable{Path: env.ExplicitPath, FontConfigPath: fonts}
	}

	if exists(LayerBinaryPath) {
		return Executable{Path: LayerBinaryPath, FontConfigPath: LayerFontsPath}
	}

	if env.TaskRoot != "" {
		bundled := filepath.Join(env.TaskRoot, BundledBinaryPath)
		if exists(bundled) {
			return Executable{
				Path:           bundled,
				FontConfigPath: filepath.Join(env.TaskRoot, BundledFontsDir),
			}
		}
	}

	return Executable{Path: SystemBinaryPath, FontConfigPath: SystemFontsPath}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
