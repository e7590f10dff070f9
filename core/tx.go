package core

import (
	"time"

	"github.com/shrek82/jmapper/pool"
)

// Tx is a transaction started by DB.Begin. It owns its connection and
// implements pool.Tx, so it can be passed to GetResultTx.
type Tx struct {
	db   *DB
	conn pool.Conn
	tx   pool.Tx
}

func (t *Tx) Conn() pool.Conn {
	return t.tx.Conn()
}

// Commit commits the transaction and releases the connection.
func (t *Tx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.db.logSQL("COMMIT", time.Since(start))
	t.release()
	return err
}

// Rollback rolls back the transaction and releases the connection.
func (t *Tx) Rollback() error {
	start := time.Now()
	err := t.tx.Rollback()
	t.db.logSQL("ROLLBACK", time.Since(start))
	t.release()
	return err
}

func (t *Tx) release() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

func (t *Tx) driverTx() pool.Tx {
	return t.tx
}

// unwrapTx returns the driver transaction behind a *Tx.
func unwrapTx(tx pool.Tx) pool.Tx {
	if w, ok := tx.(interface{ driverTx() pool.Tx }); ok {
		return w.driverTx()
	}
	return tx
}
