package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/mroshb/film_catalog/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendshipFixture struct {
	svc       *FriendshipService
	relations *memory.RelationStore
	users     []*models.User
}

func newFriendshipFixture(t *testing.T, n int) *friendshipFixture {
	t.Helper()
	catalog := memory.NewCatalogStore()
	relations := memory.NewRelationStore()

	users := make([]*models.User, 0, n)
	for i := 1; i <= n; i++ {
		u := &models.User{Email: fmt.Sprintf("u%d@example.com", i), Login: fmt.Sprintf("u%d", i)}
		require.NoError(t, catalog.CreateUser(context.Background(), u))
		users = append(users, u)
	}

	svc := NewFriendshipService(relations, catalog)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	return &friendshipFixture{svc: svc, relations: relations, users: users}
}

func userIDs(users []models.User) []uint {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func (f *friendshipFixture) friendsOf(t *testing.T, u *models.User) []uint {
	t.Helper()
	friends, err := f.svc.GetFriends(context.Background(), u)
	require.NoError(t, err)
	return userIDs(friends)
}

func TestFriendship_RequestThenAccept(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	changed, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, changed)

	rel, err := f.relations.Find(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, models.FriendshipStatusPending, rel.Status)
	assert.Nil(t, rel.AcceptedAt)

	// A pending outgoing request already counts on the requester's side.
	assert.Equal(t, []uint{b.ID}, f.friendsOf(t, a))
	assert.Empty(t, f.friendsOf(t, b))

	changed, err = f.svc.AddFriend(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, changed)

	rel, err = f.relations.Find(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, rel.Status)
	require.NotNil(t, rel.AcceptedAt)
	assert.Equal(t, f.svc.now(), *rel.AcceptedAt)

	mirror, err := f.relations.Find(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, mirror, "acceptance must not create a second row")

	assert.Equal(t, []uint{b.ID}, f.friendsOf(t, a))
	assert.Equal(t, []uint{a.ID}, f.friendsOf(t, b))
}

func TestFriendship_RepeatedRequestsAreNoops(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	_, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)

	changed, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, changed, "already requested")

	_, err = f.svc.AddFriend(ctx, b, a)
	require.NoError(t, err)

	changed, err = f.svc.AddFriend(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, changed, "already friends")

	changed, err = f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, changed)

	all, err := f.relations.ListWhere(ctx, repositories.RelationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFriendship_RemoveOnlyDeletesOwnRow(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	_, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)
	_, err = f.svc.AddFriend(ctx, b, a)
	require.NoError(t, err)

	// The accepted row is a->b, so b has nothing of its own to remove.
	removed, err := f.svc.RemoveFriend(ctx, b, a)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []uint{a.ID}, f.friendsOf(t, b))
	assert.Equal(t, []uint{b.ID}, f.friendsOf(t, a))

	removed, err = f.svc.RemoveFriend(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, f.friendsOf(t, a))
	assert.Empty(t, f.friendsOf(t, b))

	removed, err = f.svc.RemoveFriend(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFriendship_RemovePendingRequest(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	_, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)

	removed, err := f.svc.RemoveFriend(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, removed)

	// Back to NONE: b asking now creates a fresh pending request.
	changed, err := f.svc.AddFriend(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, changed)

	rel, err := f.relations.Find(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, models.FriendshipStatusPending, rel.Status)
}

func TestFriendship_CommonFriends(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 5)
	u1, u2, u3, u4, u5 := f.users[0], f.users[1], f.users[2], f.users[3], f.users[4]

	befriend := func(x, y *models.User) {
		_, err := f.svc.AddFriend(ctx, x, y)
		require.NoError(t, err)
		_, err = f.svc.AddFriend(ctx, y, x)
		require.NoError(t, err)
	}
	befriend(u1, u3)
	befriend(u2, u3)
	befriend(u1, u4)
	befriend(u5, u2)
	_, err := f.svc.AddFriend(ctx, u4, u2) // u4 -> u2 pending, counts only for u4
	require.NoError(t, err)

	common, err := f.svc.GetCommonFriends(ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, []uint{u3.ID}, userIDs(common))

	common, err = f.svc.GetCommonFriends(ctx, u3, u4)
	require.NoError(t, err)
	assert.Equal(t, []uint{u1.ID, u2.ID}, userIDs(common))

	common, err = f.svc.GetCommonFriends(ctx, u1, u5)
	require.NoError(t, err)
	assert.Empty(t, common)
}

func TestFriendship_IncomingRequests(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 4)
	u1, u2, u3, u4 := f.users[0], f.users[1], f.users[2], f.users[3]

	for _, from := range []*models.User{u3, u2, u4} {
		_, err := f.svc.AddFriend(ctx, from, u1)
		require.NoError(t, err)
	}
	_, err := f.svc.AddFriend(ctx, u1, u4) // accepts u4
	require.NoError(t, err)

	requests, err := f.svc.GetIncomingRequests(ctx, u1)
	require.NoError(t, err)
	assert.Equal(t, []uint{u2.ID, u3.ID}, userIDs(requests))
}

func TestFriendship_ConcurrentMutualRequests(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	var changes int32
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			changed, err := f.svc.AddFriend(ctx, from, to)
			assert.NoError(t, err)
			if changed {
				atomic.AddInt32(&changes, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(2), changes, "one request and one acceptance")

	all, err := f.relations.ListWhere(ctx, repositories.RelationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.FriendshipStatusAccepted, all[0].Status)
	assert.Equal(t, []uint{b.ID}, f.friendsOf(t, a))
	assert.Equal(t, []uint{a.ID}, f.friendsOf(t, b))
}

func TestFriendship_CancelledContext(t *testing.T) {
	f := newFriendshipFixture(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	changed, err := f.svc.AddFriend(ctx, f.users[0], f.users[1])
	assert.Error(t, err)
	assert.False(t, changed)

	all, err := f.relations.ListWhere(context.Background(), repositories.RelationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

// pausingRelations runs onLocked once, inside the next Atomically section,
// before the caller's function.
type pausingRelations struct {
	*memory.RelationStore
	onLocked func()
}

func (p *pausingRelations) Atomically(ctx context.Context, a, b uint, fn func(store repositories.RelationStore) error) error {
	return p.RelationStore.Atomically(ctx, a, b, func(store repositories.RelationStore) error {
		if hook := p.onLocked; hook != nil {
			p.onLocked = nil
			hook()
		}
		return fn(store)
	})
}

func TestFriendship_RemoveWaitsForPendingAccept(t *testing.T) {
	ctx := context.Background()
	f := newFriendshipFixture(t, 2)
	a, b := f.users[0], f.users[1]

	changed, err := f.svc.AddFriend(ctx, a, b)
	require.NoError(t, err)
	require.True(t, changed)

	relations := &pausingRelations{RelationStore: f.relations}
	svc := NewFriendshipService(relations, nil)
	svc.now = f.svc.now

	type removal struct {
		removed bool
		err     error
	}
	done := make(chan removal, 1)
	relations.onLocked = func() {
		go func() {
			removed, err := svc.RemoveFriend(ctx, a, b)
			done <- removal{removed, err}
		}()
		select {
		case <-done:
			t.Error("RemoveFriend finished while AddFriend held the pair")
		case <-time.After(50 * time.Millisecond):
		}
	}

	accepted, err := svc.AddFriend(ctx, b, a)
	require.NoError(t, err)
	assert.True(t, accepted)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.True(t, r.removed)
	case <-time.After(2 * time.Second):
		t.Fatal("RemoveFriend never finished")
	}

	all, err := f.relations.ListWhere(ctx, repositories.RelationFilter{})
	require.NoError(t, err)
	assert.Empty(t, all, "accept then unfriend leaves no rows")
	assert.Empty(t, f.friendsOf(t, a))
	assert.Empty(t, f.friendsOf(t, b))
}
