// Package config loads optional tuning overrides for the numeric
// constants that govern reality distortion (decay rates, thresholds,
// buffer caps), decoded with gopkg.in/yaml.v2.
//
// Every field defaults to the canonical constants. Loading a file only
// narrows or widens the reality-distortion tuning; it never changes
// the language grammar or the shape of the state model, and the
// zero-config defaults are exactly what the canonical testable
// properties assume.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config collects every tunable constant the interpreter consults.
type Config struct {
	// Decay and caps
	SanityPerStatement   float64 `yaml:"sanity_per_statement"`
	MaxWhispers          int     `yaml:"max_whispers"`
	MaxWhisperChars      int     `yaml:"max_whisper_chars"`
	MaxWhisperStatements int     `yaml:"max_whisper_statements"`
	MaxRecursionDepth    int     `yaml:"max_recursion_depth"`
	MaxLoopIterations    int     `yaml:"max_loop_iterations"`
	EchoCapacity         int     `yaml:"echo_capacity"`
	EchoDrainOnOverflow  int     `yaml:"echo_drain_on_overflow"`
	FragmentCapacity     int     `yaml:"fragment_capacity"`
	TranscriptCapChars   int     `yaml:"transcript_cap_chars"`

	// Thresholds (sanity bands)
	DontTurnLeftThreshold    float64 `yaml:"dont_turn_left_threshold"`
	AppendSuffixThreshold    float64 `yaml:"append_suffix_threshold"`
	PhantomSpawnThreshold    float64 `yaml:"phantom_spawn_threshold"`
	BleedThroughThreshold    float64 `yaml:"bleed_through_threshold"`
	NumericDriftThreshold    float64 `yaml:"numeric_drift_threshold"`
	EchoDistortionThreshold  float64 `yaml:"echo_distortion_threshold"`
	PhantomLookupThreshold   float64 `yaml:"phantom_lookup_threshold"`
	ConditionInvertThreshold float64 `yaml:"condition_invert_threshold"`
	CriticalSanityThreshold  float64 `yaml:"critical_sanity_threshold"`

	// Phantom naming pool
	PhantomNames []string `yaml:"phantom_names"`

	// Whisper sandbox forbidden substrings, matched case-insensitively.
	ForbiddenWhisperSubstrings []string `yaml:"forbidden_whisper_substrings"`
}

// Default returns the canonical configuration. It is what every
// public constructor uses unless a caller supplies an override file.
func Default() *Config {
	return &Config{
		SanityPerStatement:   0.08,
		MaxWhispers:          10,
		MaxWhisperChars:      1000,
		MaxWhisperStatements: 10,
		MaxRecursionDepth:    100,
		MaxLoopIterations:    1000,
		EchoCapacity:         50,
		EchoDrainOnOverflow:  10,
		FragmentCapacity:     10,
		TranscriptCapChars:   10000,

		DontTurnLeftThreshold:    15,
		AppendSuffixThreshold:    5,
		PhantomSpawnThreshold:    20,
		BleedThroughThreshold:    40,
		NumericDriftThreshold:    40,
		EchoDistortionThreshold:  20,
		PhantomLookupThreshold:   20,
		ConditionInvertThreshold: 40,
		CriticalSanityThreshold:  30,

		PhantomNames: []string{
			"shadow", "echo", "whisper", "void", "fragment",
			"Avery", "Derlord", "The_Oasis", "Bedrock",
		},

		ForbiddenWhisperSubstrings: []string{
			"whisper", "infect", "rift", "carcosa", "system", "creative", "spectator",
		},
	}
}

// Load reads a YAML tuning file, starting from Default() and
// overriding only the fields the file sets.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
