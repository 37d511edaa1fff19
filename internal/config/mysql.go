package config

import (
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// DSN builds the driver connection string. parseTime is required for the
// DATETIME columns to scan into time.Time.
func (m MySQLConfig) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = m.User
	dsn.Passwd = m.Pass
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(m.Host, m.Port)
	dsn.DBName = m.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.ClientFoundRows = true // stock updates report matched rows, not changed rows
	return dsn.FormatDSN()
}

// ConnectMySQL opens the database and waits for it to answer a ping.
func ConnectMySQL(m MySQLConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < m.ConnectRetries; i++ {
		db, err = sql.Open("mysql", m.DSN())
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("Connected to DB %s", m.Name)
				return db, nil
			}
			db.Close()
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB %s (%s:%s)", i+1, m.Name, m.Host, m.Port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %w", m.Name, m.Host, m.Port, err)
}
