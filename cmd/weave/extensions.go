package main

import (
	"fmt"
	"sort"
	"strings"

	"weave/internal/compiler"
	"weave/internal/idom"
)

// bundledExtensions are the extensions shipped with the CLI, by name.
var bundledExtensions = map[string]func() compiler.Extension{
	idom.Name: idom.Extension,
}

// resolveExtensions maps manifest names to extensions; no names means every
// bundled extension, in name order.
func resolveExtensions(names []string) ([]compiler.Extension, error) {
	if len(names) == 0 {
		for name := range bundledExtensions {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	exts := make([]compiler.Extension, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		mk, ok := bundledExtensions[name]
		if !ok {
			return nil, fmt.Errorf("unknown extension %q", name)
		}
		exts = append(exts, mk())
	}
	return exts, nil
}
