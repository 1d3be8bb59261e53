package pg

import (
	"database/sql"
	"fmt"
	"time"
)

type Config struct {
	User            string        `env:"USER"`
	Host            string        `env:"HOST"`
	Port            string        `env:"PORT"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"DBNAME"`
	SSLMode         string        `env:"SSLMODE,default=disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS,default=20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME,default=30m"`
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Database, c.Port, sslMode)
}

func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.DSN())
}
