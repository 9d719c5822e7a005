package item

import (
	"context"
)

// fakeStore is a map-backed store for repository tests.
type fakeStore struct {
	hashes   map[string]map[string]string
	sets     map[string]map[string]struct{}
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (f *fakeStore) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	m, ok := f.hashes[key]
	if !ok {
		m = make(map[string]string)
		f.hashes[key] = m
	}
	for k, v := range fields {
		m[k] = v
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	m, ok := f.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := f.HGetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	delete(f.hashes, key)
	return nil
}

func (f *fakeStore) SAdd(_ context.Context, key string, members ...string) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	s, ok := f.sets[key]
	if !ok {
		s = make(map[string]struct{})
		f.sets[key] = s
	}
	for _, m := range members {
		s[m] = struct{}{}
	}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key string, members ...string) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	var out []string
	for m := range f.sets[key] {
		out = append(out, m)
	}
	return out, nil
}
