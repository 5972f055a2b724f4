// Package store is the resilient key-value layer every other component
// persists through. None of its operations fail: missing or unreadable
// values fall back to the caller's default and failed writes are dropped
// with a warning.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/sirupsen/logrus"

	"munjiz/internal/db"
	"munjiz/internal/logging"
	"munjiz/internal/metrics"
)

type Store struct {
	backend db.Backend
	log     *logrus.Entry
}

func New(backend db.Backend, logger *logging.Logger) *Store {
	return &Store{backend: backend, log: logger.Component("store")}
}

// Raw returns the stored text for key.
func (s *Store) Raw(ctx context.Context, key string) (string, bool) {
	v, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.log.Warnf("Error reading store key %q: %v", key, err)
			metrics.RecordStoreFailure("get")
		}
		return "", false
	}
	return v, true
}

// Get decodes the JSON stored under key into dst and reports whether dst
// was assigned. A value that is not valid JSON is assigned verbatim when
// dst is a *string; otherwise dst keeps its default.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	raw, ok := s.Raw(ctx, key)
	if !ok {
		return false
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		s.log.Warnf("Error decoding store key %q: destination must be a non-nil pointer", key)
		return false
	}
	// decode into a scratch value so a failed decode leaves dst untouched
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal([]byte(raw), tmp.Interface()); err != nil {
		if sp, isString := dst.(*string); isString {
			*sp = raw
			return true
		}
		s.log.Warnf("Error decoding store key %q: %v", key, err)
		metrics.RecordStoreFailure("decode")
		return false
	}
	rv.Elem().Set(tmp.Elem())
	return true
}

// Set stores strings as-is and everything else as JSON.
func (s *Store) Set(ctx context.Context, key string, value any) {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s.log.Warnf("Error encoding store key %q: %v", key, err)
			metrics.RecordStoreFailure("encode")
			return
		}
		text = string(b)
	}
	if err := s.backend.Set(ctx, key, text); err != nil {
		s.log.Warnf("Error setting store key %q: %v", key, err)
		metrics.RecordStoreFailure("set")
	}
}

func (s *Store) Close() error {
	return s.backend.Close()
}
