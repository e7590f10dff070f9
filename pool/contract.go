package pool

import (
	"context"
	"database/sql"
	"time"
)

// Kind tells the driver how to interpret the command text.
type Kind int

const (
	KindText Kind = iota
	KindStoredProcedure
)

func (k Kind) String() string {
	if k == KindStoredProcedure {
		return "StoredProcedure"
	}
	return "Text"
}

// Direction is the driver-level parameter flow.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInputOutput
	DirectionReturnValue
)

// DbType is the driver-level logical type of a parameter.
type DbType int

const (
	DbTypeObject DbType = iota
	DbTypeAnsiString
	DbTypeAnsiStringFixedLength
	DbTypeBinary
	DbTypeBoolean
	DbTypeByte
	DbTypeCurrency
	DbTypeDate
	DbTypeDateTime
	DbTypeDateTime2
	DbTypeDateTimeOffset
	DbTypeDecimal
	DbTypeDouble
	DbTypeGuid
	DbTypeInt16
	DbTypeInt32
	DbTypeInt64
	DbTypeSByte
	DbTypeSingle
	DbTypeString
	DbTypeStringFixedLength
	DbTypeTime
	DbTypeUInt16
	DbTypeUInt32
	DbTypeUInt64
	DbTypeVarNumeric
	DbTypeXml
)

// Param is a driver parameter. Optional metadata that is never set keeps the
// driver default.
type Param interface {
	Name() string
	SetName(name string)
	Value() any
	SetValue(v any)
	SetDbType(t DbType)
	SetSize(n int)
	SetPrecision(p uint8)
	SetScale(s uint8)
	Direction() Direction
	SetDirection(d Direction)
}

// Request is everything a command needs to run once.
type Request struct {
	Kind    Kind
	Text    string
	Timeout time.Duration
	Params  []Param
	Tx      Tx // nil outside a transaction
}

// Cursor is a forward-only view over the rows of one result set.
type Cursor interface {
	ColumnCount() int
	ColumnName(i int) string
	IsNull(i int) bool
	Value(i int) any
	// Next advances to the next row and reports whether one exists.
	Next() bool
	Err() error
	Close() error
}

// Command executes one request against its connection.
type Command interface {
	CreateParameter() Param
	Execute(ctx context.Context, req Request) (Cursor, error)
	Close() error
}

// Conn is a single database session.
type Conn interface {
	IsOpen() bool
	Open(ctx context.Context) error
	CreateCommand() Command
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
	Close() error
}

// Tx is a transaction started on a Conn. Commit and Rollback are the
// owner's responsibility.
type Tx interface {
	Conn() Conn
	Commit() error
	Rollback() error
}

// Opener builds an unopened connection from a connection string.
type Opener interface {
	Connect(connString string) (Conn, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(connString string) (Conn, error)

func (f OpenerFunc) Connect(connString string) (Conn, error) {
	return f(connString)
}
