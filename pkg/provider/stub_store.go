package provider

import (
	"context"
	"sync"
)

// StubStore is an in-memory Store for tests. It records every call and serves
// canned rows per table; it performs no selection evaluation.
type StubStore struct {
	mu sync.Mutex

	QueryCalls     int
	InstancesCalls int
	InsertCalls    int
	UpdateCalls    int
	DeleteCalls    int

	RowsByTable  map[string][]Row
	InstanceRows []Row
	NextInsertID int64
	Err          error
}

func NewStubStore() *StubStore {
	return &StubStore{
		RowsByTable:  make(map[string][]Row),
		NextInsertID: 1,
	}
}

// Calls returns the total number of store operations performed.
func (s *StubStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.QueryCalls + s.InstancesCalls + s.InsertCalls + s.UpdateCalls + s.DeleteCalls
}

func (s *StubStore) Query(ctx context.Context, q Query) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.QueryCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.RowsByTable[q.Table], nil
}

func (s *StubStore) Instances(ctx context.Context, windowStart, windowEnd int64, q Query) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InstancesCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.InstanceRows, nil
}

func (s *StubStore) Insert(ctx context.Context, table string, values Values) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	id := s.NextInsertID
	s.NextInsertID++
	return id, nil
}

func (s *StubStore) BulkInsert(ctx context.Context, table string, values []Values) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(values)), nil
}

func (s *StubStore) Update(ctx context.Context, table string, values Values, selection string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return 1, nil
}

func (s *StubStore) Delete(ctx context.Context, table string, selection string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return 1, nil
}
