package config

import "runtime"

const (
	defaultLogDir              = "~/.local/share/capsgen/logs"
	defaultLedgerDir           = "~/.local/share/capsgen"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultPreprocessing       = "t1-linear"
	defaultTracer              = "18FFDG"
	defaultSUVRReferenceRegion = "pons"
	defaultGammaLow            = -0.2
	defaultGammaHigh           = -0.05
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			LedgerDir: defaultLedgerDir,
		},
		Generation: Generation{
			Workers:             runtime.NumCPU(),
			Preprocessing:       defaultPreprocessing,
			Tracer:              defaultTracer,
			SUVRReferenceRegion: defaultSUVRReferenceRegion,
			GammaLow:            defaultGammaLow,
			GammaHigh:           defaultGammaHigh,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
