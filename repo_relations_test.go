package connectify_test

import (
	"context"
	"testing"

	"github.com/connectify/connectify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikesToggle(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	user := seedUser(t, repo, "ada")
	track := seedTrack(t, repo, user, "first")

	active, err := repo.Likes().Toggle(ctx, user.ID, track.ID)
	require.NoError(t, err)
	assert.True(t, active)

	exists, err := repo.Likes().Exists(ctx, user.ID, track.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Same command flips it back off.
	active, err = repo.Likes().Toggle(ctx, user.ID, track.ID)
	require.NoError(t, err)
	assert.False(t, active)

	exists, err = repo.Likes().Exists(ctx, user.ID, track.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// And on again.
	active, err = repo.Likes().Toggle(ctx, user.ID, track.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestFollowsCountsAndTargets(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	ada := seedUser(t, repo, "ada")
	bob := seedUser(t, repo, "bob")
	eve := seedUser(t, repo, "eve")

	_, err := repo.Follows().Toggle(ctx, ada.ID, bob.ID)
	require.NoError(t, err)
	_, err = repo.Follows().Toggle(ctx, ada.ID, eve.ID)
	require.NoError(t, err)
	_, err = repo.Follows().Toggle(ctx, bob.ID, eve.ID)
	require.NoError(t, err)

	following, err := repo.Follows().CountByActor(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, following)

	followers, err := repo.Follows().CountByTarget(ctx, eve.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)

	targets, err := repo.Follows().TargetIDs(ctx, ada.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{bob.ID, eve.ID}, []any{targets[0], targets[1]})

	// Unfollow drops the edge from the listing.
	_, err = repo.Follows().Toggle(ctx, ada.ID, bob.ID)
	require.NoError(t, err)

	targets, err = repo.Follows().TargetIDs(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, eve.ID, targets[0])
}
