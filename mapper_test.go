package d1q

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnFor(t *testing.T) {
	cases := map[string]string{
		"Name":        "name",
		"FirstName":   "first_name",
		"HTTPPort":    "http_port",
		"UserID":      "user_id",
		"ID":          "id",
		"CreatedAt2":  "created_at2",
		"A":           "a",
		"OrderItemID": "order_item_id",
	}
	for property, want := range cases {
		assert.Equal(t, want, ColumnFor(property), "property %s", property)
	}
}

func TestMaterialize(t *testing.T) {
	type entity struct {
		ID        int64     `db:"id"`
		Name      string    `db:"name"`
		Age       int       `db:"age"`
		Balance   float64   `db:"balance"`
		Active    bool      `db:"active"`
		Nickname  *string   `db:"nickname"`
		CreatedAt time.Time `db:"created_at"`
		Secret    string    `db:"-"`
	}

	t.Run("driver types convert to field types", func(t *testing.T) {
		got, err := Materialize[entity](Row{
			"id":         int64(7),
			"name":       "Ada",
			"age":        int64(36),
			"balance":    int64(100),
			"active":     int64(1),
			"nickname":   "countess",
			"created_at": "2026-08-31 12:00:00",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, 36, got.Age)
		assert.Equal(t, 100.0, got.Balance)
		assert.True(t, got.Active)
		require.NotNil(t, got.Nickname)
		assert.Equal(t, "countess", *got.Nickname)
		assert.Equal(t, 2026, got.CreatedAt.Year())
	})

	t.Run("NULL and missing columns leave zero values", func(t *testing.T) {
		got, err := Materialize[entity](Row{
			"id":       int64(1),
			"nickname": nil,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Nil(t, got.Nickname)
		assert.Empty(t, got.Name)
	})

	t.Run("unconvertible value errors", func(t *testing.T) {
		_, err := Materialize[entity](Row{"age": "not a number"})
		require.Error(t, err)
	})

	t.Run("non-struct target errors", func(t *testing.T) {
		_, err := Materialize[int](Row{"n": int64(1)})
		require.Error(t, err)
	})

	t.Run("untagged fields use the default mapping", func(t *testing.T) {
		type plain struct {
			FirstName string
			UserID    int64
		}
		got, err := Materialize[plain](Row{
			"first_name": "Grace",
			"user_id":    int64(2),
		})
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.FirstName)
		assert.Equal(t, int64(2), got.UserID)
	})
}
