package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text in dev, plain slog
	BackendZap Backend = "zap" // zap core behind slog, JSON with sampling
)

type Config struct {
	// metadata stamped onto every record
	Service    string
	Version    string
	InstanceID string

	// output control
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// zap sampling
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}
