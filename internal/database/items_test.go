package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemsLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := createRandomUser(t)
	stranger := createRandomUser(t)

	desc := "bank pin"
	id, err := testStore.CreateItem(ctx, CreateItemParams{UserID: owner.ID, Name: "PIN", Description: &desc})
	require.NoError(t, err)
	require.NotZero(t, id)

	items, err := testStore.ListItems(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "PIN", items[0].Name)
	require.Equal(t, "bank pin", *items[0].Description)

	empty, err := testStore.ListItems(ctx, stranger.ID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	ok, err := testStore.UpdateItem(ctx, UpdateItemParams{ID: id, UserID: stranger.ID, Name: "stolen"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = testStore.UpdateItem(ctx, UpdateItemParams{ID: id, UserID: owner.ID, Name: "PIN 2"})
	require.NoError(t, err)
	require.True(t, ok)

	items, err = testStore.ListItems(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, "PIN 2", items[0].Name)
	require.Nil(t, items[0].Description)

	ok, err = testStore.DeleteItem(ctx, id, stranger.ID)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = testStore.DeleteItem(ctx, id, owner.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = testStore.DeleteItem(ctx, id, owner.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
