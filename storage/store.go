package storage

import (
	"fmt"
)

const (
	// recordVersion prefixes every stored value so the on-disk layout can
	// evolve without rewriting history.
	recordVersion byte = 1

	partitionSep = '/'

	// maxBatchRecords caps the number of records per physical batch write.
	maxBatchRecords = 10_000

	// batchFillRatio is the fraction of the configured byte ceiling at
	// which a physical batch is flushed.
	batchFillRatio = 0.8

	// DefaultBatchByteCeiling bounds the estimated size of one physical
	// batch write when the caller does not configure a ceiling.
	DefaultBatchByteCeiling = 64 << 20
)

// KV is one key/value result from a prefix scan.
type KV struct {
	Key   string
	Value []byte
}

// Store layers named partitions on top of a Database. Each partition holds
// one entity type; keys inside a partition are plain strings, internally
// namespaced as "<partition>/<key>". Values carry a version byte so the
// serialization can evolve.
type Store struct {
	db          Database
	byteCeiling int
}

// NewStore wraps the supplied database. byteCeiling bounds the estimated
// size of a physical batch; zero selects DefaultBatchByteCeiling.
func NewStore(db Database, byteCeiling int) *Store {
	if byteCeiling <= 0 {
		byteCeiling = DefaultBatchByteCeiling
	}
	return &Store{db: db, byteCeiling: byteCeiling}
}

func (s *Store) key(partition, key string) []byte {
	buf := make([]byte, 0, len(partition)+1+len(key))
	buf = append(buf, partition...)
	buf = append(buf, partitionSep)
	buf = append(buf, key...)
	return buf
}

func encodeValue(value []byte) []byte {
	buf := make([]byte, 0, len(value)+1)
	buf = append(buf, recordVersion)
	return append(buf, value...)
}

func decodeValue(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("storage: empty record")
	}
	if raw[0] != recordVersion {
		return nil, fmt.Errorf("storage: unsupported record version %d", raw[0])
	}
	return raw[1:], nil
}

// Put writes one value under partition/key.
func (s *Store) Put(partition, key string, value []byte) error {
	if err := s.db.Put(s.key(partition, key), encodeValue(value)); err != nil {
		return fmt.Errorf("storage: put %s/%s: %w", partition, key, err)
	}
	return nil
}

// Get fetches the value stored under partition/key. It returns ErrNotFound
// when the key is absent.
func (s *Store) Get(partition, key string) ([]byte, error) {
	raw, err := s.db.Get(s.key(partition, key))
	if err != nil {
		return nil, err
	}
	return decodeValue(raw)
}

// Has reports whether partition/key exists.
func (s *Store) Has(partition, key string) (bool, error) {
	return s.db.Has(s.key(partition, key))
}

// ScanPrefix returns up to limit records in the partition whose keys share
// prefix, in ascending key order, starting strictly after exclusiveStartKey
// when it is non-empty. limit <= 0 means unlimited.
func (s *Store) ScanPrefix(partition, prefix string, limit int, exclusiveStartKey string) ([]KV, error) {
	scanPrefix := s.key(partition, prefix)
	var start []byte
	if exclusiveStartKey != "" {
		start = s.key(partition, exclusiveStartKey)
	}
	strip := len(partition) + 1
	var out []KV
	var decodeErr error
	err := s.db.IteratePrefix(scanPrefix, start, func(key, value []byte) bool {
		plain, err := decodeValue(value)
		if err != nil {
			decodeErr = fmt.Errorf("storage: scan %s: %w", string(key), err)
			return false
		}
		out = append(out, KV{Key: string(key[strip:]), Value: plain})
		return limit <= 0 || len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return out, nil
}

// GetAll returns every value in the partition in ascending key order.
func (s *Store) GetAll(partition string) ([][]byte, error) {
	kvs, err := s.ScanPrefix(partition, "", 0, "")
	if err != nil {
		return nil, err
	}
	values := make([][]byte, len(kvs))
	for i, kv := range kvs {
		values[i] = kv.Value
	}
	return values, nil
}

// PutBatch writes all records into the partition. The logical batch is split
// into physical batches when either maxBatchRecords is reached or the
// estimated payload exceeds batchFillRatio of the byte ceiling. Each physical
// batch is atomic; a failure is returned to the caller without retry. Since
// a record write is idempotent (same key, same value), retrying the whole
// logical batch after a partial failure is safe.
func (s *Store) PutBatch(partition string, records map[string][]byte) error {
	if len(records) == 0 {
		return nil
	}
	byteLimit := int(float64(s.byteCeiling) * batchFillRatio)
	entries := make([]Entry, 0, maxBatchRecords)
	pending := 0
	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		if err := s.db.WriteBatch(entries); err != nil {
			return fmt.Errorf("storage: batch write %s (%d records): %w", partition, len(entries), err)
		}
		entries = entries[:0]
		pending = 0
		return nil
	}
	for key, value := range records {
		e := Entry{Key: s.key(partition, key), Value: encodeValue(value)}
		size := len(e.Key) + len(e.Value)
		if len(entries) > 0 && (len(entries) >= maxBatchRecords || pending+size > byteLimit) {
			if err := flush(); err != nil {
				return err
			}
		}
		entries = append(entries, e)
		pending += size
	}
	return flush()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
