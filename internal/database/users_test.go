package database

import (
	"context"
	"testing"
	"time"

	"lockwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		Email: "dana@example.com",
		Name:  "Dana Webb",
		Phone: "+1-555-0100",
	}
	require.NoError(t, db.UpsertUser(ctx, user))

	stored, err := db.GetUserByEmail(ctx, "DANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Dana Webb", stored.Name)
	assert.Equal(t, "+1-555-0100", stored.Phone)
	assert.False(t, stored.LastSeenAt.IsZero())

	// A later upsert without a phone keeps the one we already have.
	require.NoError(t, db.UpsertUser(ctx, &models.User{
		Email: "dana@example.com",
		Name:  "Dana W.",
	}))

	stored, err = db.GetUserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Dana W.", stored.Name)
	assert.Equal(t, "+1-555-0100", stored.Phone)

	missing, err := db.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestTouchUserLastSeen(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{Email: "dana@example.com", Name: "Dana Webb"}
	require.NoError(t, db.UpsertUser(ctx, user))

	stored, err := db.GetUserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	firstSeen := stored.LastSeenAt

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, db.TouchUserLastSeen(ctx, stored.ID))

	stored, err = db.GetUserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.LastSeenAt.After(firstSeen), "touch advances last_seen_at")
}
