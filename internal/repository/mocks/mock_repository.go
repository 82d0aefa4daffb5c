package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/ludoteca/internal/domain"
)

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return domain.EmptySnapshot(), args.Error(1)
	}
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSnapshotStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
