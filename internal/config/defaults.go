package config

import (
	_ "embed"
)

//go:embed defaults/pulse.yaml
var defaultPulseYAML []byte
