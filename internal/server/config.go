package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/wilddraw/internal/room"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address   string `hcl:"address,optional"`
	Port      int    `hcl:"port,optional"`
	LogLevel  string `hcl:"log_level,optional"`
	StaticDir string `hcl:"static_dir,optional"`
	StatsFile string `hcl:"stats_file,optional"`
}

// GameSettings contains the table stakes and timing budgets.
type GameSettings struct {
	StartingChips    int `hcl:"starting_chips,optional"`
	SmallBlind       int `hcl:"small_blind,optional"`
	BigBlind         int `hcl:"big_blind,optional"`
	TurnSeconds      int `hcl:"turn_seconds,optional"`
	SettleSeconds    int `hcl:"settle_seconds,optional"`
	CountdownSeconds int `hcl:"countdown_seconds,optional"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   "localhost",
			Port:      3000,
			LogLevel:  "info",
			StaticDir: "public",
			StatsFile: "stats.json",
		},
		Game: GameSettings{
			StartingChips:    1000,
			SmallBlind:       10,
			BigBlind:         20,
			TurnSeconds:      30,
			SettleSeconds:    3,
			CountdownSeconds: 3,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	def := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = def.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = def.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = def.Server.LogLevel
	}
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = def.Server.StaticDir
	}
	if config.Server.StatsFile == "" {
		config.Server.StatsFile = def.Server.StatsFile
	}
	if config.Game.StartingChips == 0 {
		config.Game.StartingChips = def.Game.StartingChips
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = def.Game.SmallBlind
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = def.Game.BigBlind
	}
	if config.Game.TurnSeconds == 0 {
		config.Game.TurnSeconds = def.Game.TurnSeconds
	}
	if config.Game.SettleSeconds == 0 {
		config.Game.SettleSeconds = def.Game.SettleSeconds
	}
	if config.Game.CountdownSeconds == 0 {
		config.Game.CountdownSeconds = def.Game.CountdownSeconds
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Game.StartingChips < c.Game.BigBlind {
		return fmt.Errorf("starting chips must cover the big blind")
	}
	if c.Game.TurnSeconds <= 0 {
		return fmt.Errorf("turn budget must be positive")
	}
	return nil
}

// Addr returns the full listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomConfig converts the game settings into a room configuration.
func (c *Config) RoomConfig() room.Config {
	return room.Config{
		StartingChips: c.Game.StartingChips,
		SmallBlind:    c.Game.SmallBlind,
		BigBlind:      c.Game.BigBlind,
		TurnTime:      time.Duration(c.Game.TurnSeconds) * time.Second,
		SettleDelay:   time.Duration(c.Game.SettleSeconds) * time.Second,
		CountdownFrom: c.Game.CountdownSeconds,
	}
}
