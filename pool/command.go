package pool

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/shrek82/jmapper/dialect"
)

type sqlCommand struct {
	conn *sqlConn
}

func (c *sqlCommand) CreateParameter() Param {
	return &sqlParam{}
}

func (c *sqlCommand) Close() error {
	return nil
}

// Execute renders the request with the connection's dialect and runs it. The
// timeout context lives until the returned cursor is closed.
func (c *sqlCommand) Execute(ctx context.Context, req Request) (Cursor, error) {
	conn := c.conn
	var tx *sql.Tx
	if req.Tx != nil {
		st, ok := req.Tx.(*sqlTx)
		if !ok {
			return nil, fmt.Errorf("pool: foreign transaction type %T", req.Tx)
		}
		conn, tx = st.conn, st.tx
	}
	if !conn.IsOpen() {
		return nil, ErrConnClosed
	}

	text, args, err := render(conn.opener.dialect, req)
	if err != nil {
		return nil, err
	}

	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}

	var rows *sql.Rows
	if tx != nil {
		rows, err = tx.QueryContext(ctx, text, args...)
	} else {
		rows, err = conn.conn.QueryContext(ctx, text, args...)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	cur, err := newCursor(rows, cancel)
	if err != nil {
		_ = rows.Close()
		cancel()
		return nil, err
	}
	return cur, nil
}

// render produces the statement text and the database/sql arguments.
func render(d dialect.Dialect, req Request) (string, []any, error) {
	params := make([]*sqlParam, len(req.Params))
	values := make([]any, len(req.Params))
	for i, p := range req.Params {
		sp, ok := p.(*sqlParam)
		if !ok {
			return "", nil, fmt.Errorf("pool: foreign parameter type %T", p)
		}
		v, err := sp.bindValue()
		if err != nil {
			return "", nil, err
		}
		if sp.isOutput() && !d.OutputArgs() {
			return "", nil, fmt.Errorf("%w: %s (parameter %s)", dialect.ErrOutputUnsupported, d.Name(), sp.name)
		}
		params[i], values[i] = sp, v
	}

	lookup := func(name string) (int, bool) {
		for i, p := range params {
			if strings.EqualFold(dialect.TrimPrefix(p.name), name) {
				return i, true
			}
		}
		return 0, false
	}

	switch req.Kind {
	case KindStoredProcedure:
		procArgs := make([]dialect.ProcArg, len(params))
		for i, p := range params {
			procArgs[i] = dialect.ProcArg{
				Name:   dialect.TrimPrefix(p.name),
				Output: p.dir == DirectionOutput || p.dir == DirectionInputOutput,
				Return: p.dir == DirectionReturnValue,
			}
		}
		text, err := d.ProcedureSQL(req.Text, procArgs)
		if err != nil {
			return "", nil, err
		}
		if d.NamedArgs() {
			return text, namedArgs(params, values), nil
		}
		args := make([]any, 0, len(params))
		for i, p := range params {
			if p.dir != DirectionReturnValue {
				args = append(args, values[i])
			}
		}
		return text, args, nil

	default:
		text, order := dialect.Rebind(req.Text, d, lookup)
		if len(order) == 0 {
			// no named tokens: the text uses the driver's own placeholders
			return req.Text, values, nil
		}
		if d.NamedArgs() {
			return req.Text, namedArgs(params, values), nil
		}
		args := make([]any, len(order))
		for i, idx := range order {
			args[i] = values[idx]
		}
		return text, args, nil
	}
}

func namedArgs(params []*sqlParam, values []any) []any {
	args := make([]any, len(params))
	for i, p := range params {
		name := dialect.TrimPrefix(p.name)
		if p.isOutput() {
			p.out = values[i]
			args[i] = sql.Named(name, sql.Out{Dest: &p.out, In: p.dir == DirectionInputOutput})
			continue
		}
		args[i] = sql.Named(name, values[i])
	}
	return args
}

// sqlParam is the database/sql flavour of Param.
type sqlParam struct {
	name      string
	value     any
	out       any
	dbType    *DbType
	size      *int
	precision *uint8
	scale     *uint8
	dir       Direction
}

func (p *sqlParam) Name() string             { return p.name }
func (p *sqlParam) SetName(name string)      { p.name = name }
func (p *sqlParam) SetValue(v any)           { p.value, p.out = v, v }
func (p *sqlParam) SetDbType(t DbType)       { p.dbType = &t }
func (p *sqlParam) SetSize(n int)            { p.size = &n }
func (p *sqlParam) SetPrecision(v uint8)     { p.precision = &v }
func (p *sqlParam) SetScale(v uint8)         { p.scale = &v }
func (p *sqlParam) Direction() Direction     { return p.dir }
func (p *sqlParam) SetDirection(d Direction) { p.dir = d }

func (p *sqlParam) Value() any {
	if p.isOutput() {
		return p.out
	}
	return p.value
}

func (p *sqlParam) isOutput() bool {
	return p.dir != DirectionInput
}

// bindValue applies the declared type, size and scale to the input value.
func (p *sqlParam) bindValue() (any, error) {
	v := p.value
	if v == nil {
		return nil, nil
	}
	if p.dbType != nil {
		cv, err := coerceDbType(v, *p.dbType)
		if err != nil {
			return nil, fmt.Errorf("pool: parameter %s: %w", p.name, err)
		}
		v = cv
	}
	if p.size != nil && *p.size > 0 {
		switch s := v.(type) {
		case string:
			if utf8.RuneCountInString(s) > *p.size {
				v = string([]rune(s)[:*p.size])
			}
		case []byte:
			if len(s) > *p.size {
				v = s[:*p.size]
			}
		}
	}
	if p.scale != nil {
		pow := math.Pow10(int(*p.scale))
		switch f := v.(type) {
		case float64:
			v = math.Round(f*pow) / pow
		case float32:
			v = float32(math.Round(float64(f)*pow) / pow)
		}
	}
	return v, nil
}

func coerceDbType(v any, t DbType) (any, error) {
	switch t {
	case DbTypeAnsiString, DbTypeAnsiStringFixedLength, DbTypeString, DbTypeStringFixedLength, DbTypeXml:
		return cast.ToStringE(v)
	case DbTypeBoolean:
		return cast.ToBoolE(v)
	case DbTypeByte:
		n, err := toUnsigned(v, 8)
		return uint8(n), err
	case DbTypeSByte:
		n, err := toSigned(v, 8)
		return int8(n), err
	case DbTypeInt16:
		n, err := toSigned(v, 16)
		return int16(n), err
	case DbTypeInt32:
		n, err := toSigned(v, 32)
		return int32(n), err
	case DbTypeInt64:
		return toSigned(v, 64)
	case DbTypeUInt16:
		n, err := toUnsigned(v, 16)
		return uint16(n), err
	case DbTypeUInt32:
		n, err := toUnsigned(v, 32)
		return uint32(n), err
	case DbTypeUInt64:
		return toUnsigned(v, 64)
	case DbTypeSingle:
		return cast.ToFloat32E(v)
	case DbTypeDouble, DbTypeDecimal, DbTypeCurrency, DbTypeVarNumeric:
		return cast.ToFloat64E(v)
	case DbTypeDate, DbTypeDateTime, DbTypeDateTime2, DbTypeDateTimeOffset, DbTypeTime:
		return cast.ToTimeE(v)
	case DbTypeGuid:
		switch g := v.(type) {
		case uuid.UUID:
			return g, nil
		case []byte:
			if len(g) == 16 {
				return uuid.FromBytes(g)
			}
			return uuid.ParseBytes(g)
		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, err
			}
			return uuid.Parse(s)
		}
	case DbTypeBinary:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
		return nil, fmt.Errorf("unable to cast %#v of type %T to []byte", v, v)
	}
	return v, nil
}

// toSigned parses text as base 10 and rejects fractional or out-of-range values.
func toSigned(v any, bits int) (int64, error) {
	var n int64
	switch x := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, bits)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(x)), 10, bits)
	case float32:
		return toSigned(float64(x), bits)
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("unable to cast %v to int%d", x, bits)
		}
		n = int64(x)
	case uint:
		return toSigned(uint64(x), bits)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int%d", x, bits)
		}
		n = int64(x)
	default:
		var err error
		if n, err = cast.ToInt64E(v); err != nil {
			return 0, err
		}
	}
	if bits < 64 {
		lim := int64(1) << (bits - 1)
		if n < -lim || n >= lim {
			return 0, fmt.Errorf("value %d overflows int%d", n, bits)
		}
	}
	return n, nil
}

func toUnsigned(v any, bits int) (uint64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseUint(strings.TrimSpace(x), 10, bits)
	case []byte:
		return strconv.ParseUint(strings.TrimSpace(string(x)), 10, bits)
	case uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToUint64E(x)
		if err != nil {
			return 0, err
		}
		if bits < 64 && n >= uint64(1)<<bits {
			return 0, fmt.Errorf("value %d overflows uint%d", n, bits)
		}
		return n, nil
	}
	n, err := toSigned(v, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || (bits < 64 && uint64(n) >= uint64(1)<<bits) {
		return 0, fmt.Errorf("value %d overflows uint%d", n, bits)
	}
	return uint64(n), nil
}
