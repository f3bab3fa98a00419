package usecase

import (
	"context"

	"github.com/rocketscienceinc/impostor-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockT interface {
	mock.TestingT
	Cleanup(f func())
}

type mockPlayerRepo struct {
	mock.Mock
}

func newMockPlayerRepo(t mockT) *mockPlayerRepo {
	m := &mockPlayerRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	return that.Called(ctx, player).Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	ret := that.Called(ctx, id)

	player, _ := ret.Get(0).(*entity.Player)

	return player, ret.Error(1)
}

func (that *mockPlayerRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}

type mockRoomRepo struct {
	mock.Mock
}

func newMockRoomRepo(t mockT) *mockRoomRepo {
	m := &mockRoomRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (that *mockRoomRepo) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

func (that *mockRoomRepo) GetByCode(ctx context.Context, code string) (*entity.Room, error) {
	ret := that.Called(ctx, code)

	room, _ := ret.Get(0).(*entity.Room)

	return room, ret.Error(1)
}

func (that *mockRoomRepo) DeleteByCode(ctx context.Context, code string) error {
	return that.Called(ctx, code).Error(0)
}

func (that *mockRoomRepo) Exists(ctx context.Context, code string) (bool, error) {
	ret := that.Called(ctx, code)

	return ret.Bool(0), ret.Error(1)
}
