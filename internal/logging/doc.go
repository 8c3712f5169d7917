// Package logging provides slog-based helpers shared by every pipeline
// component: typed attribute constructors, component loggers, and logger
// construction driven by configuration.
//
// Components never build their own handlers; they accept a *slog.Logger and
// scope it with NewComponentLogger so log output stays uniform across the
// pipeline.
package logging
