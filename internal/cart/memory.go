package cart

import "context"

// MemoryStorage keeps the encoded cart in process memory. Used in tests and
// wherever Redis is not wired.
type MemoryStorage struct {
	data []byte
}

func (s *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	return s.data, nil
}

func (s *MemoryStorage) Save(ctx context.Context, data []byte) error {
	s.data = data
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context) error {
	s.data = nil
	return nil
}
