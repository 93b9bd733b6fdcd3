// Package store provides the durable key-value store the risk state persists
// through. The on-disk format is an implementation detail, not a contract.
package store

// KV is a durable byte store. Write must be atomic and immediately visible
// to subsequent reads; Read reports absence without error.
type KV interface {
	Read(key string) ([]byte, bool, error)
	Write(key string, data []byte) error
}

// MemKV is an in-memory KV for tests and paper runs.
type MemKV struct {
	m map[string][]byte
}

var _ KV = (*MemKV)(nil)

func NewMem() *MemKV {
	return &MemKV{m: make(map[string][]byte)}
}

func (s *MemKV) Read(key string) ([]byte, bool, error) {
	b, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (s *MemKV) Write(key string, data []byte) error {
	b := make([]byte, len(data))
	copy(b, data)
	s.m[key] = b
	return nil
}
