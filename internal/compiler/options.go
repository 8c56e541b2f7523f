package compiler

import "weave/internal/traverse"

const (
	DefaultRuntimeModule = "weave-runtime"
	DefaultIdomModule    = "weave-idom"
	DefaultKeyLength     = 7

	// templateObject is the exported object carrying render functions.
	templateObject = "_template"
)

// Options tune code generation. Zero fields take defaults.
type Options struct {
	// RuntimeModule provides createSubContext, entries and filters.
	RuntimeModule string
	// IdomModule is where rendering extensions import DOM helpers from.
	IdomModule  string
	ContextName string
	KeyLength   int
}

// DefaultOptions returns the built-in configuration.
func DefaultOptions() Options {
	return Options{
		RuntimeModule: DefaultRuntimeModule,
		IdomModule:    DefaultIdomModule,
		ContextName:   traverse.DefaultContextName,
		KeyLength:     DefaultKeyLength,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RuntimeModule == "" {
		o.RuntimeModule = def.RuntimeModule
	}
	if o.IdomModule == "" {
		o.IdomModule = def.IdomModule
	}
	if o.ContextName == "" {
		o.ContextName = def.ContextName
	}
	if o.KeyLength <= 0 {
		o.KeyLength = def.KeyLength
	}
	return o
}
