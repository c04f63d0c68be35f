package config

import (
	"errors"
	"fmt"
	"isolation/meta"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// AgentConfig describes one seat. Zero numeric values take the defaults from
// meta.
type AgentConfig struct {
	Name        string  `yaml:"name" validate:"required"`
	Strategy    string  `yaml:"strategy" validate:"required,oneof=minimax mcts random"`
	// Capped at what a midgame search finishes within the default time limit
	Depth       int     `yaml:"depth" validate:"gte=0,lte=6"`
	Iterations  int     `yaml:"iterations" validate:"gte=0"`
	Exploration float64 `yaml:"exploration" validate:"gte=0"`
	Evaluation  string  `yaml:"evaluation" validate:"omitempty,oneof=liberties aggressive defensive"`
	// Duration caps a single MCTS decision on top of the iteration count.
	Duration time.Duration `yaml:"duration" validate:"gte=0"`
	// Remote is the base URL of an agent server; the strategy then runs there.
	Remote string `yaml:"remote" validate:"omitempty,url"`
}

type Config struct {
	TimeLimit   time.Duration `yaml:"time_limit" validate:"gt=0"`
	MaxTurns    int           `yaml:"max_turns" validate:"gt=0"`
	Games       int           `yaml:"games" validate:"gt=0"`
	Concurrency int           `yaml:"concurrency" validate:"gt=0"`
	Seed        uint64        `yaml:"seed"`
	LogLevel    string        `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	OutputDir   string        `yaml:"output_dir" validate:"required"`
	Agents      []AgentConfig `yaml:"agents" validate:"required,min=1,unique=Name,dive"`
}

func Default() Config {
	return Config{
		TimeLimit:   meta.TIME_LIMIT,
		MaxTurns:    meta.MAX_TURNS,
		Games:       meta.GAMES,
		Concurrency: 4,
		LogLevel:    "info",
		OutputDir:   "results",
		Agents: []AgentConfig{
			{Name: "minimax", Strategy: "minimax"},
			{Name: "mcts", Strategy: "mcts"},
		},
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	config := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) ApplyDefaults() {
	for i := range c.Agents {
		c.Agents[i].ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (a *AgentConfig) ApplyDefaults() {
	if a.Depth == 0 {
		a.Depth = meta.DEPTH
	}
	if a.Iterations == 0 {
		a.Iterations = meta.ITERATIONS
	}
	if a.Exploration == 0 {
		a.Exploration = meta.EXPLORATION
	}
	if a.Evaluation == "" {
		a.Evaluation = "liberties"
	}
}

func (a *AgentConfig) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid agent %q: %w", a.Name, err)
	}
	return nil
}

// Agent looks up a seat by name.
func (c *Config) Agent(name string) (AgentConfig, error) {
	for _, a := range c.Agents {
		if a.Name == name {
			return a, nil
		}
	}
	return AgentConfig{}, errors.New("unknown agent " + name)
}
