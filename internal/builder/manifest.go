package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest holds optional per-script build options, read from a
// `<name>.build.yml` file beside the script.
type Manifest struct {
	// HiddenImports are modules the packager's analysis misses
	HiddenImports []string `yaml:"hidden_imports"`
	// Windowed builds without an attached console
	Windowed bool `yaml:"windowed"`
	// Icon is an icon file path passed through to the packager
	Icon string `yaml:"icon"`
	// Args are appended verbatim to the packager command line
	Args []string `yaml:"args"`
}

// LoadManifest reads the manifest beside the given source file. A missing
// manifest is not an error; the zero value applies.
func LoadManifest(sourcePath string) (Manifest, error) {
	var m Manifest

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	path := filepath.Join(filepath.Dir(sourcePath), base+".build.yml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, err
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
