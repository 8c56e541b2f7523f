package main

import (
	"fmt"
	"os"
	"path/filepath"

	"weave/internal/driver"
	"weave/internal/project"
)

// session is what a command needs to drive a compile: the manifest, the
// documents to compile and the directory outputs mirror.
type session struct {
	manifest *project.Manifest
	paths    []string
	root     string
}

// openSession discovers weave.toml from the first input and expands
// directories into their documents.
func openSession(args []string, outDir string) (*session, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	first, err := os.Stat(args[0])
	if err != nil {
		return nil, err
	}
	start := args[0]
	if !first.IsDir() {
		start = filepath.Dir(args[0])
	}
	m, err := project.Discover(start)
	if err != nil {
		return nil, err
	}

	s := &session{manifest: m, root: m.Root}
	if s.root == "" {
		s.root = start
	}
	if outDir == "" {
		outDir = m.OutputDir()
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			s.paths = append(s.paths, arg)
			continue
		}
		docs, err := driver.ListDocuments(arg, outDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		s.paths = append(s.paths, docs...)
	}
	return s, nil
}

// cache opens the disk cache the manifest asks for; nil when disabled.
func (s *session) cache(disabled bool) (*driver.DiskCache, error) {
	if disabled || s.manifest.Cache.Disabled {
		return nil, nil
	}
	dir := s.manifest.Cache.Dir
	if dir != "" && !filepath.IsAbs(dir) && s.manifest.Root != "" {
		dir = filepath.Join(s.manifest.Root, dir)
	}
	return driver.OpenDiskCache(dir)
}

// driverOptions assembles compile options from the manifest.
func (s *session) driverOptions(maxDiagnostics, jobs int) (driver.Options, error) {
	exts, err := resolveExtensions(s.manifest.Compiler.Extensions)
	if err != nil {
		return driver.Options{}, fmt.Errorf("%s: %w", s.manifestName(), err)
	}
	if jobs <= 0 {
		jobs = s.manifest.Output.Jobs
	}
	return driver.Options{
		Compiler:       s.manifest.CompilerOptions(),
		Extensions:     exts,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Manifest:       s.manifest,
	}, nil
}

func (s *session) manifestName() string {
	if s.manifest.Path == "" {
		return project.ManifestName
	}
	return s.manifest.Path
}
