package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/cloudbox/dblink"
	"github.com/cloudbox/dblink/mysql"
	"github.com/cloudbox/dblink/sqlite"
)

type connectionConfig struct {
	SQLite *sqlite.Config `yaml:"sqlite"`
	MySQL  *mysql.Config  `yaml:"mysql"`
}

type config struct {
	Connections map[string]connectionConfig `yaml:"connections"`
}

var errUnknownConnection = errors.New("unknown connection")

// loadConfig reads and strictly decodes the YAML config file at path.
func loadConfig(path string) (config, error) {
	file, err := os.Open(path)
	if err != nil {
		return config{}, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	cfg := config{
		Connections: make(map[string]connectionConfig),
	}

	decoder := yaml.NewDecoder(file)
	decoder.SetStrict(true)
	if err := decoder.Decode(&cfg); err != nil {
		return config{}, fmt.Errorf("decode: %w", err)
	}

	for name, c := range cfg.Connections {
		if (c.SQLite == nil) == (c.MySQL == nil) {
			return config{}, fmt.Errorf("connection %v: exactly one of sqlite or mysql is required", name)
		}
	}

	return cfg, nil
}

// names returns the sorted connection names.
func (c config) names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// open connects to the named connection.
func (c config) open(ctx context.Context, name string) (*dblink.Conn, error) {
	cc, ok := c.Connections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v (configured: %v)", errUnknownConnection, name, c.names())
	}

	if cc.SQLite != nil {
		return sqlite.New(ctx, name, *cc.SQLite)
	}
	return mysql.New(ctx, name, *cc.MySQL)
}
