package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"weave/internal/compiler"
)

// ManifestName is the project file looked up from the input upwards.
const ManifestName = "weave.toml"

// Output formats accepted in [output].format.
const (
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatSketch = "sketch"
)

var (
	// ErrUnknownKey is wrapped when weave.toml holds keys nothing reads.
	ErrUnknownKey = errors.New("unknown key")
	// ErrBadValue is wrapped when a known key holds an unusable value.
	ErrBadValue = errors.New("invalid value")
)

// CompilerSection is [compiler].
type CompilerSection struct {
	Runtime   string `toml:"runtime"`
	Idom      string `toml:"idom"`
	Context   string `toml:"context"`
	KeyLength int    `toml:"key_length"`
	// Extensions lists extension names to enable; empty means all bundled ones.
	Extensions []string `toml:"extensions"`
}

// OutputSection is [output].
type OutputSection struct {
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
	Jobs   int    `toml:"jobs"`
}

// CacheSection is [cache].
type CacheSection struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

// Manifest is a parsed weave.toml. Path and Root are empty for the default
// manifest used outside any project.
type Manifest struct {
	Path     string          `toml:"-"`
	Root     string          `toml:"-"`
	Compiler CompilerSection `toml:"compiler"`
	Output   OutputSection   `toml:"output"`
	Cache    CacheSection    `toml:"cache"`
}

// Default returns the manifest used when no weave.toml is found.
func Default() *Manifest {
	return &Manifest{
		Compiler: CompilerSection{
			Runtime:   compiler.DefaultRuntimeModule,
			Idom:      compiler.DefaultIdomModule,
			KeyLength: compiler.DefaultKeyLength,
		},
		Output: OutputSection{Format: FormatYAML},
	}
}

// FindManifest walks up from startDir to locate weave.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses path on top of the defaults.
func LoadManifest(path string) (*Manifest, error) {
	m := Default()
	meta, err := toml.DecodeFile(path, m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m.Path = abs
	m.Root = filepath.Dir(abs)
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Discover loads the nearest weave.toml above startDir, or the defaults.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return LoadManifest(path)
}

func (m *Manifest) validate() error {
	switch m.Output.Format {
	case FormatYAML, FormatJSON, FormatSketch:
	case "":
		m.Output.Format = FormatYAML
	default:
		return fmt.Errorf("%w: output.format %q (want yaml, json or sketch)", ErrBadValue, m.Output.Format)
	}
	if k := m.Compiler.KeyLength; k != 0 && (k < 4 || k > 32) {
		return fmt.Errorf("%w: compiler.key_length %d (want 4..32)", ErrBadValue, k)
	}
	if m.Output.Jobs < 0 {
		return fmt.Errorf("%w: output.jobs %d", ErrBadValue, m.Output.Jobs)
	}
	if m.Output.Dir != "" && filepath.IsAbs(m.Output.Dir) {
		return fmt.Errorf("%w: output.dir %q must be relative", ErrBadValue, m.Output.Dir)
	}
	return nil
}

// CompilerOptions maps [compiler] onto compiler options.
func (m *Manifest) CompilerOptions() compiler.Options {
	return compiler.Options{
		RuntimeModule: m.Compiler.Runtime,
		IdomModule:    m.Compiler.Idom,
		ContextName:   m.Compiler.Context,
		KeyLength:     m.Compiler.KeyLength,
	}
}

// OutputDir resolves [output].dir against the project root; empty means
// "next to the input".
func (m *Manifest) OutputDir() string {
	if m.Output.Dir == "" {
		return ""
	}
	if m.Root == "" {
		return m.Output.Dir
	}
	return filepath.Join(m.Root, m.Output.Dir)
}
