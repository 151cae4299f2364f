package config

import "sort"

// Presets are named run setups for the four models.
var Presets = map[string]func() *Config{
	"wells": func() *Config {
		return DefaultConfig()
	},
	"wells-adi": func() *Config {
		cfg := DefaultConfig()
		cfg.Rep = 1
		return cfg
	},
	"forced-coupling": func() *Config {
		cfg := DefaultConfig()
		cfg.Model = 2
		return cfg
	},
	"gaussian-overlap": func() *Config {
		cfg := DefaultConfig()
		cfg.Model = 3
		return cfg
	},
	"periodic": func() *Config {
		cfg := DefaultConfig()
		cfg.Model = 4
		cfg.Init.MeanQ = 0.0
		return cfg
	},
	"thermal": func() *Config {
		cfg := DefaultConfig()
		cfg.Hopping.UseBoltzFactor = true
		return cfg
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
