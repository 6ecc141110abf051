package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/shinyyama/village-market/internal/config"
	"gorm.io/gorm"
)

// RetryPolicy controls the exponential backoff used by Retry.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

var (
	DefaultRetry = RetryPolicy{Attempts: 3, Base: 100 * time.Millisecond, Max: 2 * time.Second}
	// StartupRetry covers a database that comes up after the server.
	StartupRetry = RetryPolicy{Attempts: 5, Base: time.Second, Max: 16 * time.Second}
)

// backOff doubles the wait from Base up to Max, without jitter, and stops after
// Attempts calls or when ctx ends.
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.Base
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	if p.Max > 0 {
		exp.MaxInterval = p.Max
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Retry runs fn again when it fails with a broken-connection error. The pool
// reconnects on its own on the next call. Other errors are returned immediately.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && !IsConnError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(op, p.backOff(ctx), func(err error, wait time.Duration) {
		log.Printf("[db] retry attempt=%d wait=%s err=%v", attempt, wait, err)
	})
}

// ConnectWithRetry opens the database, retrying any failure under p.
func ConnectWithRetry(ctx context.Context, cfg *config.Config, p RetryPolicy) (*gorm.DB, error) {
	var conn *gorm.DB
	attempt := 0
	op := func() error {
		attempt++
		var err error
		conn, err = Connect(cfg)
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("[db] connect attempt=%d wait=%s err=%v", attempt, wait, err)
	}
	if err := backoff.RetryNotify(op, p.backOff(ctx), notify); err != nil {
		return nil, err
	}
	return conn, nil
}

func IsConnError(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}
