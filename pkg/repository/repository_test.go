package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/agrimarket/pkg/db"
	"github.com/smallbiznis/agrimarket/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type crop struct {
	ID        int64 `gorm:"primaryKey"`
	Kind      string
	CreatedAt time.Time
}

func TestStoreSelectInsert(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&crop{}))

	ctx := context.Background()
	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	store := ProvideStore[crop](conn)

	require.NoError(t, store.Insert(ctx,
		&crop{ID: 1, Kind: "paddy_straw", CreatedAt: base},
		&crop{ID: 2, Kind: "paddy_straw", CreatedAt: base},
		&crop{ID: 3, Kind: "wheat_straw", CreatedAt: base.Add(time.Hour)},
	))

	rows, err := store.Select(ctx, &crop{Kind: "paddy_straw"}, option.NewestFirst())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 2, rows[0].ID)

	one, err := store.SelectOne(ctx, nil, option.In("id", []int64{3}))
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "wheat_straw", one.Kind)

	missing, err := store.SelectOne(ctx, &crop{Kind: "cotton_stalk"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := store.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
