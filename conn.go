package orarec

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	goOra "github.com/sijms/go-ora/v2"
)

// Connector interface that define a connection as consumed by callers
// exercising PL/SQL record binds
type Connector interface {
	ExecuteDDL(stmt string) Result
	DescribeRecordType(qualifiedName string) (*RecordType, error)
	CallRecord(proc string, params ...*RecordParam) RecordResult
	CallRecordMany(proc string, in *RecordParam, rows []any, out *RecordParam) BatchResult
	Ping() error
	Close()
}

// runner is the slice of *sqlx.DB the connection actually uses,
// substituted by fakes in tests
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	PingContext(ctx context.Context) error
}

// ConnectionConfiguration represents the minimum configuration required for the connection pool
type ConnectionConfiguration struct {
	ConfigurationSet      bool
	MaxOpenConnections    int
	MaxIdleConnections    int
	ContextTimeout        int
	MaxConnectionLifeTime time.Duration
	MaxIdleConnectionTime time.Duration
}

// Connection represents an object connection for Oracle
type Connection struct {
	Name          string
	ConStr        string
	Configuration *ConnectionConfiguration
	log           *zerolog.Logger
	conn          *sqlx.DB
	run           runner
	types         map[string]*RecordType
	lock          sync.Mutex
}

// -----------------------------------------------------
// Public Methods
// -----------------------------------------------------

// NewConnectionWithParams create a new connection using every parameter independently
// Parameters:
// @server: Server Address - name or ip
// @port: Connection port
// @user: User name
// @password: password
// @service: Service Name for Oracle connection if SID is needed use @options
// @options: specified some options like TRACE, SID, wallet etc.
// @configuration: Specifies how connection parameters must be handled in ConnectionConfiguration
// @name: Connection name
// @log: *zerolog.Logger is required
func NewConnectionWithParams(server string, port int, user, password, service string,
	options map[string]string,
	configuration *ConnectionConfiguration,
	name string,
	log *zerolog.Logger,
) (*Connection, error) {
	conStr := goOra.BuildUrl(server, port, service, user, password, options)
	return NewConnection(conStr, name, configuration, log)
}

// NewConnection create and open a go-ora backed connection pool
// Parameters:
// @constr: Connection String built with BuildUrl
// @name: Connection name
// @configuration: Specifies how connection must be handled with ConnectionConfiguration
// @log: *zerolog.Logger is required
func NewConnection(constr string, name string, configuration *ConnectionConfiguration, log *zerolog.Logger) (*Connection, error) {
	log.Info().Msgf("+++ New connection pool [%v]", name)
	if constr == "" {
		log.Error().Msg("connection string without value")
		return nil, EmptyConStrErr
	}

	// createConnection
	conn, err := createConnection(constr, configuration, log)
	if err != nil {
		log.Err(err).Msg("pool connection could not be opened")
		return nil, err
	}

	log.Info().Msgf("+++ Connection pool [%v] created", name)
	// returning connection
	return &Connection{
		Name:          name,
		conn:          conn,
		run:           conn,
		ConStr:        constr,
		Configuration: configuration,
		log:           log,
		types:         make(map[string]*RecordType),
	}, nil
}

// ExecuteDDL execute a DDL command against the current connection
// Parameters:
// @stmt Statement to execute
func (c *Connection) ExecuteDDL(stmt string) Result {
	c.log.Info().Msgf("+++ Hit ExecuteDDL for [%v]", firstLine(stmt))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()
	result, err := c.run.ExecContext(ctx, stmt)
	if err != nil {
		return Result{
			Error:           err,
			RecordsAffected: 0,
		}
	}

	ra, err := result.RowsAffected()
	if err != nil {
		return Result{
			Error:           err,
			RecordsAffected: 0,
		}
	}

	return Result{
		Error:           nil,
		RecordsAffected: ra,
	}
}

// Exec used to execute a statement with scalar in and out parameters,
// the record call machinery routes every anonymous block through here
// Parameters:
// @stmt Statement to execute
// @params List of parameters to replace in @stmt
func (c *Connection) Exec(stmt string, params []*Param) Result {
	id := uuid.NewString()
	c.log.Info().Str("call", id).Msgf("+++ Hit Exec with [%v] parameters", len(params))
	for _, p := range params {
		if p.Direction == Input {
			c.log.Debug().Str("call", id).Msgf("+++ Param [%v] - Value [%v]", p.Name, p.Value)
		}
	}

	if err := c.Ping(); err != nil {
		c.log.Err(err).Str("call", id).Msg("\t ... (Exec) connection went away")
		return Result{
			Error:           err,
			RecordsAffected: 0,
		}
	}

	values := buildParamsList(params)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
	defer cancel()
	rows, err := c.run.ExecContext(ctx, stmt, values...)
	if err != nil {
		c.log.Err(err).Str("call", id).Msg("\t ... (Exec) error executing statement")
		return Result{
			Error:           err,
			RecordsAffected: 0,
		}
	}

	rowsAffected, err := rows.RowsAffected()
	if err != nil {
		return Result{
			Error:           err,
			RecordsAffected: 0,
		}
	}
	return Result{
		RecordsAffected: rowsAffected,
		Error:           nil,
	}
}

// Ping make a test to a current connection
func (c *Connection) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := c.run.PingContext(ctx)
	if err != nil {
		return CantPingConnection(err.Error())
	}
	return nil
}

// Close closes the current connection, close errors are logged and never escape
func (c *Connection) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.log.Err(err).Msgf("Error closing connection [%s]", err.Error())
	}
}

// -----------------------------------------------------
// Private
// -----------------------------------------------------

// timeout resolves the context timeout from the configuration when set
func (c *Connection) timeout() time.Duration {
	if c.Configuration != nil && c.Configuration.ConfigurationSet && c.Configuration.ContextTimeout > 0 {
		return time.Duration(c.Configuration.ContextTimeout) * time.Second
	}
	return 120 * time.Second
}

// firstLine trims a multiline statement for log output
func firstLine(stmt string) string {
	for i := 0; i < len(stmt); i++ {
		if stmt[i] == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}

// createConnection takes all the parameters and construct a new connection object to reuse as pool
// Parameters:
// @constr ConnectionString
// @configuration All the configurations that affect how the pool behaves
// @log Log object provided to write into unified log
func createConnection(constr string, configuration *ConnectionConfiguration, log *zerolog.Logger) (*sqlx.DB, error) {
	// Open connection via sql.Open interface
	db, err := sql.Open("oracle", constr)
	if err != nil {
		return nil, CantCreateConnErr(err.Error())
	}
	conn := sqlx.NewDb(db, "oracle")

	// context timeout
	timeout := time.Duration(30) * time.Second

	if configuration != nil {
		if configuration.ConfigurationSet {

			log.Info().Msg(" ----------------------------------------  ")
			log.Info().Msgf(" ... MaxOpenConnections : %v", configuration.MaxOpenConnections)
			log.Info().Msgf(" ... MaxIdleConnections : %v", configuration.MaxIdleConnections)
			log.Info().Msgf(" ... MaxConnectionLifeTime : %v", configuration.MaxConnectionLifeTime)
			log.Info().Msgf(" ... MaxIdleConnectionTime : %v", configuration.MaxIdleConnectionTime)
			log.Info().Msg(" ----------------------------------------  ")

			conn.SetMaxOpenConns(configuration.MaxOpenConnections)
			conn.SetMaxIdleConns(configuration.MaxIdleConnections)
			conn.SetConnMaxLifetime(configuration.MaxConnectionLifeTime)
			conn.SetConnMaxIdleTime(configuration.MaxIdleConnectionTime)
			timeout = time.Duration(configuration.ContextTimeout) * time.Second
		}
	}

	// test connection
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// ping connection
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, CantPingConnection(err.Error())
	}

	return conn, nil
}
