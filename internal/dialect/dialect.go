// Package dialect holds the closed set of database families the engine can
// introspect and write to.  Each dialect carries its driver name, its DSN
// construction, and the introspection strategy that works for it.
package dialect

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	goora "github.com/sijms/go-ora/v2"

	"etl_manager/internal/models"
)

// Strategy selects how a dialect's catalog is read.
type Strategy int

const (
	// StrategyGeneric reads information_schema views.
	StrategyGeneric Strategy = iota
	// StrategyCatalog reads vendor catalog views with comments.
	StrategyCatalog
)

func (s Strategy) String() string {
	if s == StrategyCatalog {
		return "catalog"
	}
	return "generic"
}

// Dialect is implemented only by the types in this package.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(c models.Connection) string
	// Schema is the owner or schema whose tables are introspected.
	Schema(c models.Connection) string
	Strategy() Strategy
	SupportsColumnComments() bool

	sealed()
}

var (
	Oracle   Dialect = oracle{}
	Postgres Dialect = postgres{}
	MySQL    Dialect = mysqlDialect{}
	MSSQL    Dialect = mssql{}
)

func init() {
	// go-ora takes :name placeholders; sqlx does not know the driver by default.
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// All returns every supported dialect.
func All() []Dialect {
	return []Dialect{Oracle, Postgres, MySQL, MSSQL}
}

// Parse resolves a stored dialect name (case-insensitive) to a Dialect.
func Parse(name string) (Dialect, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ORACLE":
		return Oracle, nil
	case "POSTGRES", "POSTGRESQL":
		return Postgres, nil
	case "MYSQL", "MARIADB":
		return MySQL, nil
	case "MSSQL", "SQLSERVER":
		return MSSQL, nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", name)
}

type oracle struct{}

func (oracle) Name() string       { return "ORACLE" }
func (oracle) DriverName() string { return "oracle" }
func (oracle) DSN(c models.Connection) string {
	return goora.BuildUrl(c.Host, c.Port, c.Database, c.Username, c.Password, nil)
}
func (oracle) Schema(c models.Connection) string { return strings.ToUpper(c.Username) }
func (oracle) Strategy() Strategy                { return StrategyCatalog }
func (oracle) SupportsColumnComments() bool      { return true }
func (oracle) sealed()                           {}

type postgres struct{}

func (postgres) Name() string       { return "POSTGRES" }
func (postgres) DriverName() string { return "pgx" }
func (postgres) DSN(c models.Connection) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
func (postgres) Schema(models.Connection) string { return "public" }
func (postgres) Strategy() Strategy              { return StrategyGeneric }
func (postgres) SupportsColumnComments() bool    { return true }
func (postgres) sealed()                         {}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "MYSQL" }
func (mysqlDialect) DriverName() string { return "mysql" }
func (mysqlDialect) DSN(c models.Connection) string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
func (mysqlDialect) Schema(c models.Connection) string { return c.Database }
func (mysqlDialect) Strategy() Strategy                { return StrategyGeneric }
func (mysqlDialect) SupportsColumnComments() bool      { return false }
func (mysqlDialect) sealed()                           {}

type mssql struct{}

func (mssql) Name() string       { return "MSSQL" }
func (mssql) DriverName() string { return "sqlserver" }
func (mssql) DSN(c models.Connection) string {
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		RawQuery: url.Values{"database": {c.Database}}.Encode(),
	}
	return u.String()
}
func (mssql) Schema(models.Connection) string { return "dbo" }
func (mssql) Strategy() Strategy              { return StrategyGeneric }
func (mssql) SupportsColumnComments() bool    { return false }
func (mssql) sealed()                         {}
