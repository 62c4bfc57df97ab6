// Package mysql connects dblink to a MySQL server.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/cloudbox/dblink"
)

// Config holds configuration for a MySQL connection.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"username"`
	Password string `yaml:"password"` //nolint:gosec // user-provided credential field
	Database string `yaml:"database"`

	// Params are extra DSN parameters, e.g. multiStatements: "true" for migrations.
	Params    map[string]string `yaml:"params"`
	Verbosity string            `yaml:"verbosity"`
}

const (
	defaultHost = "localhost"
	defaultPort = 3306
)

type backend struct {
	cfg Config
}

// New connects to the MySQL server described by c.
func New(ctx context.Context, name string, c Config) (*dblink.Conn, error) {
	return dblink.Open(ctx, &backend{cfg: c}, dblink.Options{
		Name:      name,
		Backend:   "mysql",
		Verbosity: c.Verbosity,
	})
}

// DriverConfig returns the go-sql-driver configuration for c.
func (c Config) DriverConfig() *mysql.Config {
	host := c.host()
	port := c.Port
	if port == 0 {
		port = defaultPort
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = c.Database
	cfg.ParseTime = true

	if len(c.Params) > 0 {
		cfg.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			cfg.Params[k] = v
		}
	}

	return cfg
}

func (c Config) host() string {
	if c.Host == "" {
		return defaultHost
	}
	return c.Host
}

func (b *backend) Open(ctx context.Context) (dblink.Pool, error) {
	connector, err := mysql.NewConnector(b.cfg.DriverConfig())
	if err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return dblink.SinglePool(db), nil
}

func (*backend) Decode(typeName string, value any) (any, error) {
	return decode(typeName, value)
}

// Command returns the mysql client invocation:
// mysql -A -u <user> -p<password> -h <host> [-P <port>] <database>
func (b *backend) Command() (string, []string) {
	args := []string{"-A", "-u", b.cfg.User, "-p" + b.cfg.Password, "-h", b.cfg.host()}
	if b.cfg.Port != 0 && b.cfg.Port != defaultPort {
		args = append(args, "-P", strconv.Itoa(b.cfg.Port))
	}
	args = append(args, b.cfg.Database)
	return "mysql", args
}

// decode returns DECIMAL columns as float64 instead of text, and parses
// numeric columns the driver left as bytes.
func decode(typeName string, value any) (any, error) {
	text, ok := numericText(value)
	if !ok {
		return dblink.DecodeDefault(typeName, value)
	}

	name := strings.ToUpper(typeName)
	unsigned := strings.HasPrefix(name, "UNSIGNED ")
	name = strings.TrimPrefix(name, "UNSIGNED ")

	switch name {
	case "DECIMAL", "NEWDECIMAL", "FLOAT", "DOUBLE":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %v: %w", typeName, err)
		}
		return f, nil

	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "BIGINT", "YEAR":
		if unsigned {
			u, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %v: %w", typeName, err)
			}
			return u, nil
		}

		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %v: %w", typeName, err)
		}
		return i, nil
	}

	return dblink.DecodeDefault(typeName, value)
}

func numericText(value any) (string, bool) {
	switch v := value.(type) {
	case []byte:
		return string(v), true
	case string:
		return v, true
	default:
		return "", false
	}
}
