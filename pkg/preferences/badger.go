package preferences

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/echocat/slf4g"
)

const keyPrefix = "preferences:"

type BadgerOptions struct {
	// Dir is required unless InMemory is set.
	Dir      string
	InMemory bool
}

func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("preferences: directory is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{log.GetLogger("badger")})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("cannot open preference storage %q: %w", opts.Dir, err)
	}
	return &Badger{db: db}, nil
}

type Badger struct {
	db *badger.DB
}

func (this *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := this.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read preference %q: %w", key, err)
	}
	return val, nil
}

func (this *Badger) Set(_ context.Context, key string, value []byte) error {
	if err := this.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), value)
	}); err != nil {
		return fmt.Errorf("cannot write preference %q: %w", key, err)
	}
	return nil
}

func (this *Badger) Close() error {
	return this.db.Close()
}

type badgerLogger struct {
	delegate log.Logger
}

func (this badgerLogger) Errorf(format string, args ...any) {
	this.delegate.Errorf(format, args...)
}

func (this badgerLogger) Warningf(format string, args ...any) {
	this.delegate.Warnf(format, args...)
}

// Badger is chatty on info; treat it as debug output.
func (this badgerLogger) Infof(format string, args ...any) {
	this.delegate.Debugf(format, args...)
}

func (this badgerLogger) Debugf(format string, args ...any) {
	this.delegate.Tracef(format, args...)
}
