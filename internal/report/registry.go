package report

import "roadrouter/internal/apperror"

// Registry looks up a Generator by format name ("csv", "json", "xlsx").
type Registry struct {
	generators map[string]Generator
}

// NewRegistry builds the registry with CSV, JSON, and Excel generators
// wired in, matching the formats internal/config's ReportConfig.Format
// validates against.
func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}
	for _, g := range []Generator{NewCSVGenerator(), NewJSONGenerator(), NewExcelGenerator()} {
		r.generators[g.Format()] = g
	}
	return r
}

// Get returns the Generator for format, or a CodeConfigInvalid error if no
// generator is registered for it.
func (r *Registry) Get(format string) (Generator, error) {
	g, ok := r.generators[format]
	if !ok {
		return nil, apperror.New(apperror.CodeConfigInvalid, "unknown report format").WithField(format)
	}
	return g, nil
}
