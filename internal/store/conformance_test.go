package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBook struct {
	ID      string `json:"_id,omitempty" bson:"_id,omitempty"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Author  string `json:"author,omitempty" bson:"author,omitempty"`
	Reviews []any  `json:"reviews,omitempty" bson:"reviews,omitempty"`
}

type testUser struct {
	ID       string `json:"_id,omitempty" bson:"_id,omitempty"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"password" bson:"password"`
}

var searchFields = []string{"title", "author"}

// runConformance exercises s against the Store contract. missingID must be a
// well-formed identifier that was never inserted.
func runConformance(t *testing.T, s Store, missingID string) {
	t.Helper()
	ctx := context.Background()

	dune, err := s.InsertOne(ctx, Books, testBook{Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.True(t, dune.Acknowledged)
	require.NotEmpty(t, dune.InsertedID)

	neuromancer, err := s.InsertOne(ctx, Books, testBook{Title: "Neuromancer", Author: "William Gibson"})
	require.NoError(t, err)

	t.Run("find one by id", func(t *testing.T) {
		var b testBook
		require.NoError(t, s.FindOne(ctx, Books, ByID(dune.InsertedID), &b))
		assert.Equal(t, dune.InsertedID, b.ID)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, "Frank Herbert", b.Author)
		assert.Nil(t, b.Reviews)
	})

	t.Run("find one missing", func(t *testing.T) {
		var b testBook
		err := s.FindOne(ctx, Books, ByID(missingID), &b)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("find many in insertion order", func(t *testing.T) {
		var books []testBook
		require.NoError(t, s.FindMany(ctx, Books, Filter{}, &books))
		require.Len(t, books, 2)
		assert.Equal(t, dune.InsertedID, books[0].ID)
		assert.Equal(t, neuromancer.InsertedID, books[1].ID)
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		var books []testBook
		filter := Filter{Search: &Search{Term: "DUNE", Fields: searchFields}}
		require.NoError(t, s.FindMany(ctx, Books, filter, &books))
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)

		books = nil
		filter = Filter{Search: &Search{Term: "gibs", Fields: searchFields}}
		require.NoError(t, s.FindMany(ctx, Books, filter, &books))
		require.Len(t, books, 1)
		assert.Equal(t, "Neuromancer", books[0].Title)
	})

	t.Run("search term is literal", func(t *testing.T) {
		var books []testBook
		filter := Filter{Search: &Search{Term: "d.ne", Fields: searchFields}}
		require.NoError(t, s.FindMany(ctx, Books, filter, &books))
		assert.Empty(t, books)
	})

	t.Run("replace reports matched and modified", func(t *testing.T) {
		res, err := s.UpdateOne(ctx, Books, dune.InsertedID, map[string]any{"title": "Dune"}, ReplaceFields)
		require.NoError(t, err)
		assert.Equal(t, UpdateResult{Matched: 1, Modified: 0}, res)

		res, err = s.UpdateOne(ctx, Books, dune.InsertedID, map[string]any{"title": "Dune Messiah"}, ReplaceFields)
		require.NoError(t, err)
		assert.Equal(t, UpdateResult{Matched: 1, Modified: 1}, res)

		var b testBook
		require.NoError(t, s.FindOne(ctx, Books, ByID(dune.InsertedID), &b))
		assert.Equal(t, "Dune Messiah", b.Title)
		assert.Equal(t, "Frank Herbert", b.Author)
	})

	t.Run("append keeps insertion order", func(t *testing.T) {
		for _, review := range []string{"great", "meh"} {
			res, err := s.UpdateOne(ctx, Books, dune.InsertedID, map[string]any{"reviews": review}, AppendToArray)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Matched)
			assert.Equal(t, int64(1), res.Modified)
		}

		var b testBook
		require.NoError(t, s.FindOne(ctx, Books, ByID(dune.InsertedID), &b))
		assert.Equal(t, []any{"great", "meh"}, b.Reviews)
	})

	t.Run("update missing matches nothing", func(t *testing.T) {
		res, err := s.UpdateOne(ctx, Books, missingID, map[string]any{"title": "x"}, ReplaceFields)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Matched)
	})

	t.Run("malformed id", func(t *testing.T) {
		var b testBook
		assert.ErrorIs(t, s.FindOne(ctx, Books, ByID("not-an-id"), &b), ErrInvalidID)
		_, err := s.UpdateOne(ctx, Books, "not-an-id", map[string]any{"title": "x"}, ReplaceFields)
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = s.DeleteOne(ctx, Books, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("unique email", func(t *testing.T) {
		_, err := s.InsertOne(ctx, Users, testUser{Email: "a@example.com", Password: "secret"})
		require.NoError(t, err)
		_, err = s.InsertOne(ctx, Users, testUser{Email: "a@example.com", Password: "other"})
		assert.ErrorIs(t, err, ErrDuplicateKey)

		var u testUser
		require.NoError(t, s.FindOne(ctx, Users, Filter{Equal: map[string]any{"email": "a@example.com"}}, &u))
		assert.Equal(t, "secret", u.Password)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := s.DeleteOne(ctx, Books, neuromancer.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.DeleteOne(ctx, Books, neuromancer.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		var b testBook
		assert.ErrorIs(t, s.FindOne(ctx, Books, ByID(neuromancer.InsertedID), &b), ErrNotFound)
	})

	require.NoError(t, s.Ping(ctx))
}
