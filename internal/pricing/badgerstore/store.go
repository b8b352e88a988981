// Package badgerstore keeps observed prices in an embedded BadgerDB and
// serves them as a pricing.Provider.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config controls how the database is opened.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// SyncWrites trades write latency for durability.
	SyncWrites bool
	// Logger receives badger's internal log; nil silences it.
	Logger *zap.Logger
}

// Observation is one price read from the catalog.
type Observation struct {
	Item       string            `json:"item"`
	Name       string            `json:"name,omitempty"`
	Kind       pricing.Kind      `json:"-"`
	KindKey    string            `json:"kind"`
	Timeframe  pricing.Timeframe `json:"timeframe"`
	Price      float64           `json:"price"`
	ObservedAt time.Time         `json:"observed_at"`
}

// Store is a Provider over the most recent observation per item, kind and
// timeframe. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) a store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required for a persistent store")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&zapLogger{s: cfg.Logger.Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func itemPrefix(item string) string { return "obs/" + item + "/" }

func kindPrefix(item string, kind pricing.Kind) string {
	return itemPrefix(item) + kind.String() + "/"
}

func obsKey(item string, kind pricing.Kind, tf pricing.Timeframe) []byte {
	return []byte(kindPrefix(item, kind) + string(tf))
}

// Record stores o unless a newer observation for the same key is present.
func (s *Store) Record(ctx context.Context, o Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.Item == "" || strings.Contains(o.Item, "/") {
		return fmt.Errorf("badgerstore: invalid item id %q", o.Item)
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("badgerstore: invalid kind %s", o.Kind)
	}
	if _, err := pricing.ParseTimeframe(string(o.Timeframe)); err != nil {
		return err
	}
	o.KindKey = o.Kind.String()
	val, err := json.Marshal(o)
	if err != nil {
		return err
	}
	key := obsKey(o.Item, o.Kind, o.Timeframe)
	return s.db.Update(func(txn *badger.Txn) error {
		prev, err := get(txn, key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		case prev.ObservedAt.After(o.ObservedAt):
			return nil
		}
		return txn.Set(key, val)
	})
}

// Price implements pricing.Provider. When the requested timeframe has no
// observation the most recent one of any timeframe is used. Levels fall back
// only when the item has no level observed in tf at all, so one estimate
// never mixes timeframes; tools fall back individually.
func (s *Store) Price(ctx context.Context, item string, kind pricing.Kind, tf pricing.Timeframe) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var (
		out   Observation
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		o, err := get(txn, obsKey(item, kind, tf))
		if err == nil {
			out, found = o, true
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if kind.Type == pricing.Reinforce && hasLevelsAt(txn, item, tf) {
			return nil
		}
		return scan(txn, kindPrefix(item, kind), func(o Observation) {
			if !found || o.ObservedAt.After(out.ObservedAt) {
				out, found = o, true
			}
		})
	})
	if err != nil {
		return 0, false, err
	}
	return out.Price, found, nil
}

// hasLevelsAt reports whether any level of item was observed in tf.
func hasLevelsAt(txn *badger.Txn, item string, tf pricing.Timeframe) bool {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(itemPrefix(item) + "level:")
	it := txn.NewIterator(opts)
	defer it.Close()
	suffix := "/" + string(tf)
	for it.Rewind(); it.Valid(); it.Next() {
		if strings.HasSuffix(string(it.Item().Key()), suffix) {
			return true
		}
	}
	return false
}

// Observations returns every stored observation of item.
func (s *Store) Observations(ctx context.Context, item string) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Observation
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, itemPrefix(item), func(o Observation) { out = append(out, o) })
	})
	return out, err
}

// Snapshot exports the prices of tf (falling back per entry like Price does)
// for the given items.
func (s *Store) Snapshot(ctx context.Context, tf pricing.Timeframe, items []string) (*pricing.Snapshot, error) {
	snap := &pricing.Snapshot{Timeframe: tf, TakenAt: time.Now().UTC(), Items: map[string]pricing.SnapshotItem{}}
	for _, item := range items {
		obs, err := s.Observations(ctx, item)
		if err != nil {
			return nil, err
		}
		it := pricing.SnapshotItem{Levels: map[int]float64{}, Tools: map[string]float64{}}
		for _, o := range obs {
			if it.Name == "" {
				it.Name = o.Name
			}
			p, ok, err := s.Price(ctx, item, o.Kind, tf)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if o.Kind.Type == pricing.ToolUse {
				it.Tools[o.Kind.Tool.String()] = p
			} else {
				it.Levels[o.Kind.Level] = p
			}
		}
		snap.Items[item] = it
	}
	return snap, nil
}

func get(txn *badger.Txn, key []byte) (Observation, error) {
	item, err := txn.Get(key)
	if err != nil {
		return Observation{}, err
	}
	var o Observation
	err = item.Value(func(v []byte) error { return decode(v, &o) })
	return o, err
}

func scan(txn *badger.Txn, prefix string, fn func(Observation)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		var o Observation
		if err := it.Item().Value(func(v []byte) error { return decode(v, &o) }); err != nil {
			return err
		}
		fn(o)
	}
	return nil
}

func decode(v []byte, o *Observation) error {
	if err := json.Unmarshal(v, o); err != nil {
		return fmt.Errorf("decode observation: %w", err)
	}
	k, err := pricing.ParseKind(o.KindKey)
	if err != nil {
		return err
	}
	o.Kind = k
	return nil
}

type zapLogger struct{ s *zap.SugaredLogger }

func (l *zapLogger) Errorf(f string, a ...interface{})   { l.s.Errorf(strings.TrimSpace(f), a...) }
func (l *zapLogger) Warningf(f string, a ...interface{}) { l.s.Warnf(strings.TrimSpace(f), a...) }
func (l *zapLogger) Infof(f string, a ...interface{})    { l.s.Infof(strings.TrimSpace(f), a...) }
func (l *zapLogger) Debugf(f string, a ...interface{})   { l.s.Debugf(strings.TrimSpace(f), a...) }
