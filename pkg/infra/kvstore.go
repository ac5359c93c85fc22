package infra

import (
	"encoding/json"
	"time"
)

// KVStore is an interface for key-value stores.
// Implementations exist for BadgerDB (embedded) and Redis (remote).
type KVStore interface {
	GetName() string
	Set(k string, v string) error
	// SetWithTTL stores a value that expires after ttl. A ttl of zero means
	// no expiry.
	SetWithTTL(k string, v string, ttl time.Duration) error
	Get(k string) (v string, err error)
	// SetAny/GetAny marshal structured values through the store's codec.
	SetAny(k string, v any) error
	GetAny(k string, v any) (found bool, err error)

	List(prefix string) ([]*KVPair, error)
	Delete(k string) error
	Close() error
}

type KVPair struct {
	Key   string
	Value []byte
}

// Codec encodes/decodes Go values to/from slices of bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is a Codec that encodes/decodes Go values to/from JSON.
var JSON = JSONCodec{}

type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
