package config

import (
	"os"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	defaultPort          = ":8080"
	defaultOpponentDelay = 500 * time.Millisecond
	defaultSyncPeriod    = 5 * time.Second
	defaultMigrations    = "file://migrations"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type GameConfig struct {
	GridSize             int            `yaml:"grid_size"`
	Bones                engine.Catalog `yaml:"bones"`
	MaxPlacementAttempts int            `yaml:"max_placement_attempts"`
	OpponentDelay        time.Duration  `yaml:"opponent_delay"`
	RandomSeed           int64          `yaml:"random_seed"`
}

func (c GameConfig) Rules() engine.Rules {
	return engine.Rules{
		GridSize: c.GridSize,
		Catalog:  c.Bones,
	}
}

type DatabaseConfig struct {
	Url        string `yaml:"url"`
	Migrations string `yaml:"migrations"`
}

type config struct {
	Name       string         `yaml:"name"`
	Port       string         `yaml:"port"`
	Game       GameConfig     `yaml:"game"`
	Servers    []ServerConfig `yaml:"outer_servers"`
	SyncPeriod time.Duration  `yaml:"sync_period"`
	Database   DatabaseConfig `yaml:"database"`
}

func New(cfgPath string) (config, error) {
	file, err := os.Open(cfgPath)
	if err != nil {
		return config{}, err
	}
	defer func() {
		_ = file.Close()
	}()
	cfg := config{}
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return config{}, errors.WithMessage(err, "decode yaml config")
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Game.Rules().Validate(); err != nil {
		return config{}, errors.WithMessage(ErrInvalidConfig, err.Error())
	}
	return cfg, nil
}

func (c *config) applyEnv() {
	if v := os.Getenv("SERVER_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.Url = v
	}
}

func (c *config) applyDefaults() {
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.Game.GridSize == 0 {
		c.Game.GridSize = engine.DefaultGridSize
	}
	if len(c.Game.Bones) == 0 {
		c.Game.Bones = engine.DefaultCatalog()
	}
	if c.Game.MaxPlacementAttempts == 0 {
		c.Game.MaxPlacementAttempts = engine.DefaultMaxAttempts
	}
	if c.Game.OpponentDelay == 0 {
		c.Game.OpponentDelay = defaultOpponentDelay
	}
	if c.SyncPeriod == 0 {
		c.SyncPeriod = defaultSyncPeriod
	}
	if c.Database.Migrations == "" {
		c.Database.Migrations = defaultMigrations
	}
}
