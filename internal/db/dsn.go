package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Params are the discrete connection settings a DSN is built from.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
}

// BuildDSN formats p for the given driver. For sqlite, Name is the
// database file path.
func BuildDSN(driver Driver, p Params) (string, error) {
	switch driver {
	case DriverMySQL:
		c := mysql.NewConfig()
		c.User = p.User
		c.Passwd = p.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
		c.DBName = p.Name
		if p.Charset != "" {
			c.Params = map[string]string{"charset": p.Charset}
		}
		return c.FormatDSN(), nil
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.User, p.Password),
			Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
			Path:     "/" + p.Name,
			RawQuery: "sslmode=disable",
		}
		if p.Charset != "" {
			// postgres names the charset differently; utf8mb4 is a mysql-ism
			q := u.Query()
			q.Set("client_encoding", pgEncoding(p.Charset))
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	case DriverSQLite:
		if p.Name == "" {
			return "", fmt.Errorf("sqlite: empty database path")
		}
		return "file:" + p.Name + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

func pgEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	}
	return charset
}
