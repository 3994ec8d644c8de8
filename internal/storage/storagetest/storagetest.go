// Package storagetest provides a conformance suite run against every
// storage.Store implementation.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/storage"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s:%d", prefix, time.Now().UnixNano())
}

// Run exercises s through the full storage.Store contract. Each subtest uses
// fresh user and channel ids, so s may be shared.
func Run(t *testing.T, s storage.Store) {
	t.Run("CreateProfile", func(t *testing.T) { testCreateProfile(t, s) })
	t.Run("ActiveProfile", func(t *testing.T) { testActiveProfile(t, s) })
	t.Run("SetEntry", func(t *testing.T) { testSetEntry(t, s) })
	t.Run("RenameProfile", func(t *testing.T) { testRenameProfile(t, s) })
	t.Run("ListProfiles", func(t *testing.T) { testListProfiles(t, s) })
	t.Run("Macros", func(t *testing.T) { testMacros(t, s) })
	t.Run("FastChannels", func(t *testing.T) { testFastChannels(t, s) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, s) })
}

func testCreateProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	p, err := s.CreateProfile(ctx, user, "Bob", "")
	require.NoError(t, err)
	assert.Greater(t, p.ID, int64(0))
	assert.Equal(t, "bob", p.Name)
	assert.Equal(t, "bob", p.LongName, "long name defaults to name")
	assert.Empty(t, p.Entries)

	_, err = s.CreateProfile(ctx, user, "BOB", "Another Bob")
	assert.ErrorIs(t, err, storage.ErrProfileExists)

	// names are scoped to their owner
	_, err = s.CreateProfile(ctx, uniqueID("test"), "bob", "")
	assert.NoError(t, err)

	got, err := s.Profile(ctx, user, "bOb")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = s.Profile(ctx, user, "alice")
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)
}

func testActiveProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	_, err := s.Profile(ctx, user, "")
	assert.ErrorIs(t, err, storage.ErrNoActiveProfile)

	_, err = s.SwitchProfile(ctx, user, "ghost")
	assert.ErrorIs(t, err, storage.ErrProfileNotFound)

	_, err = s.CreateProfile(ctx, user, "tobias", "Brother Tobias")
	require.NoError(t, err)
	_, err = s.CreateProfile(ctx, user, "vex", "Vex")
	require.NoError(t, err)

	p, err := s.SwitchProfile(ctx, user, "Tobias")
	require.NoError(t, err)
	assert.Equal(t, "Brother Tobias", p.LongName)

	active, err := s.Profile(ctx, user, "")
	require.NoError(t, err)
	assert.Equal(t, "tobias", active.Name)

	_, err = s.SwitchProfile(ctx, user, "vex")
	require.NoError(t, err)
	active, err = s.Profile(ctx, user, "")
	require.NoError(t, err)
	assert.Equal(t, "vex", active.Name)
}

func testSetEntry(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	_, err := s.SetEntry(ctx, user, "", key.Strength, 40)
	assert.ErrorIs(t, err, storage.ErrNoActiveProfile)

	_, err = s.CreateProfile(ctx, user, "bob", "")
	require.NoError(t, err)
	_, err = s.SwitchProfile(ctx, user, "bob")
	require.NoError(t, err)

	p, err := s.SetEntry(ctx, user, "", key.Strength, 40)
	require.NoError(t, err)
	assert.Equal(t, map[key.Key]int{key.Strength: 40}, p.Entries)

	_, err = s.SetEntry(ctx, user, "", key.TechUse, 10)
	require.NoError(t, err)
	p, err = s.SetEntry(ctx, user, "bob", key.Strength, 45)
	require.NoError(t, err)
	assert.Equal(t, map[key.Key]int{key.Strength: 45, key.TechUse: 10}, p.Entries)

	got, err := s.Profile(ctx, user, "")
	require.NoError(t, err)
	v, ok := got.Get(key.TechUse)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func testRenameProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	assert.ErrorIs(t, s.RenameProfile(ctx, user, "bob", "Bob"), storage.ErrProfileNotFound)

	_, err := s.CreateProfile(ctx, user, "bob", "")
	require.NoError(t, err)
	require.NoError(t, s.RenameProfile(ctx, user, "BOB", "Interrogator Bob"))

	p, err := s.Profile(ctx, user, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Interrogator Bob", p.DisplayName())
}

func testListProfiles(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	names, err := s.ListProfiles(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"zed", "amy", "Kal"} {
		_, err := s.CreateProfile(ctx, user, n, "")
		require.NoError(t, err)
	}
	names, err = s.ListProfiles(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "amy", "kal"}, names)
}

func testMacros(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uniqueID("test")

	_, err := s.Macro(ctx, user, "gun")
	assert.ErrorIs(t, err, storage.ErrMacroNotFound)

	prev, replaced, err := s.SaveMacro(ctx, user, "Gun", "bs !!")
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Empty(t, prev)

	cmd, err := s.Macro(ctx, user, "GUN")
	require.NoError(t, err)
	assert.Equal(t, "bs !!", cmd)

	prev, replaced, err = s.SaveMacro(ctx, user, "gun", "bs !!!")
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "bs !!", prev)

	_, _, err = s.SaveMacro(ctx, user, "axe", "ws !")
	require.NoError(t, err)
	names, err := s.ListMacros(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"axe", "gun"}, names)

	_, err = s.Macro(ctx, uniqueID("test"), "gun")
	assert.ErrorIs(t, err, storage.ErrMacroNotFound, "macros are scoped to their owner")
}

func testFastChannels(t *testing.T, s storage.Store) {
	ctx := context.Background()
	channel := uniqueID("channel")

	fast, err := s.IsFast(ctx, channel)
	require.NoError(t, err)
	assert.False(t, fast)

	fast, err = s.ToggleFast(ctx, channel)
	require.NoError(t, err)
	assert.True(t, fast)

	fast, err = s.IsFast(ctx, channel)
	require.NoError(t, err)
	assert.True(t, fast)

	fast, err = s.ToggleFast(ctx, channel)
	require.NoError(t, err)
	assert.False(t, fast)
}

func testAccounts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	username := fmt.Sprintf("user%d", time.Now().UnixNano())

	acct, err := s.CreateAccount(ctx, username, "password123")
	require.NoError(t, err)
	assert.Greater(t, acct.ID, int64(0))
	assert.Equal(t, username, acct.Username)
	assert.False(t, acct.CreatedAt.IsZero())

	_, err = s.CreateAccount(ctx, username, "other")
	assert.ErrorIs(t, err, storage.ErrAccountExists)

	got, err := s.Authenticate(ctx, username, "password123")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = s.Authenticate(ctx, username, "wrong")
	assert.ErrorIs(t, err, storage.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "nobody"+username, "password123")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}
