// Package store provides a BoltDB-backed roster of observed satellite nodes.
//
// The roster is observation history for operators: the hub's aggregation
// table is never reloaded from it and always starts all-sentinel.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var nodesBucket = []byte("nodes")

// NodeRecord tracks one satellite's reporting history.
type NodeRecord struct {
	Identity    int       `msgpack:"identity"`
	Reading     int       `msgpack:"reading"`
	Addr        string    `msgpack:"addr"`
	FirstSeen   time.Time `msgpack:"first_seen"`
	LastSeen    time.Time `msgpack:"last_seen"`
	PacketCount uint64    `msgpack:"packet_count"`
	Active      bool      `msgpack:"active"`
}

// Store wraps a bbolt database for node records.
type Store struct {
	db  *bolt.DB
	mu  sync.RWMutex
	log zerolog.Logger
}

// New opens or creates a BoltDB file at the given path.
func New(path string, log zerolog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(nodesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating nodes bucket: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying BoltDB.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(identity int) []byte {
	return []byte(fmt.Sprintf("%02d", identity))
}

// Upsert records one accepted reading for the given identity.
func (s *Store) Upsert(identity, reading int, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		k := key(identity)

		now := time.Now()
		var record NodeRecord

		existing := b.Get(k)
		if existing != nil {
			if err := msgpack.Unmarshal(existing, &record); err != nil {
				s.log.Warn().Err(err).Int("identity", identity).Msg("Failed to unmarshal existing record, overwriting")
			}
			record.Reading = reading
			record.Addr = addr
			record.LastSeen = now
			record.PacketCount++
			record.Active = true

			s.log.Debug().
				Int("identity", identity).
				Int("reading", reading).
				Msg("Node updated")
		} else {
			record = NodeRecord{
				Identity:    identity,
				Reading:     reading,
				Addr:        addr,
				FirstSeen:   now,
				LastSeen:    now,
				PacketCount: 1,
				Active:      true,
			}

			s.log.Info().
				Int("identity", identity).
				Int("reading", reading).
				Str("addr", addr).
				Msg("New node observed")
		}

		data, err := msgpack.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshaling node record: %w", err)
		}

		return b.Put(k, data)
	})
}

// GetAll returns all node records, ordered by identity.
func (s *Store) GetAll() ([]NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []NodeRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		return b.ForEach(func(k, v []byte) error {
			var record NodeRecord
			if err := msgpack.Unmarshal(v, &record); err != nil {
				s.log.Warn().Err(err).Str("key", string(k)).Msg("Skipping corrupt record")
				return nil
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// GetActive returns only node records still within the stale threshold.
func (s *Store) GetActive() ([]NodeRecord, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	var active []NodeRecord
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

// RunExpiry starts a background goroutine that marks nodes inactive once
// their LastSeen exceeds the given threshold. The aggregation table is
// unaffected: stale readings persist there until overwritten.
func (s *Store) RunExpiry(checkInterval, threshold time.Duration) {
	go func() {
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()

		for range ticker.C {
			s.expireStaleNodes(threshold)
		}
	}()
}

func (s *Store) expireStaleNodes(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-threshold)

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(nodesBucket)
		return b.ForEach(func(k, v []byte) error {
			var record NodeRecord
			if err := msgpack.Unmarshal(v, &record); err != nil {
				return nil
			}

			if record.Active && record.LastSeen.Before(cutoff) {
				record.Active = false

				s.log.Info().
					Int("identity", record.Identity).
					Time("last_seen", record.LastSeen).
					Msg("Node marked inactive")

				data, err := msgpack.Marshal(&record)
				if err != nil {
					return nil
				}
				return b.Put(k, data)
			}
			return nil
		})
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Database error during expiry check")
	}
}
