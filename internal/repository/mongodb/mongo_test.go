package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
)

func TestDocumentConversion(t *testing.T) {
	date := time.Date(2020, 1, 5, 8, 30, 0, 0, time.UTC)
	user := &model.User{
		Username:   "alice",
		Activities: []model.Activity{{Description: "run", Duration: 30, Date: date}},
	}

	doc := toDocument(user)
	require.Len(t, doc.Activities, 1)
	assert.Equal(t, "alice", doc.Username)
	assert.True(t, doc.ID.IsZero(), "toDocument must leave the id for the caller")

	back := doc.toModel()
	assert.Equal(t, user.Activities, back.Activities)
}

func TestDocumentConversion_NilActivitiesBecomeEmpty(t *testing.T) {
	back := userDocument{Username: "bob"}.toModel()
	assert.NotNil(t, back.Activities)
	assert.Empty(t, back.Activities)
}

// newIntegrationStore connects to MONGO_TEST_URI, skipping when it is unset.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := fmt.Sprintf("exercise_test_%d", time.Now().UnixNano())
	store, err := Connect(ctx, uri, database)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.client.Database(database).Drop(context.Background())
		_ = store.Close()
	})
	return store
}

func TestStoreIntegration(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice"}
	require.NoError(t, store.InsertUser(ctx, user))
	require.NotEmpty(t, user.ID)

	err := store.InsertUser(ctx, &model.User{Username: "alice"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	user.Activities = append(user.Activities, model.Activity{
		Description: "swim",
		Duration:    20,
		Date:        time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, store.SaveUser(ctx, user))

	found, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Activities, found.Activities)

	byName, err := store.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = store.FindUserByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.UserSummary{{Username: "alice", ID: user.ID}}, users)
}
