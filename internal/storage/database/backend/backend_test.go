package backend

import (
	"context"
	"testing"

	"github.com/LeJamon/goswapd/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]database.DB {
	t.Helper()
	dbs := make(map[string]database.DB)
	for _, name := range Names {
		m, err := Open(name, t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { m.Close() })
		db, err := m.OpenDB("state")
		require.NoError(t, err)
		dbs[name] = db
	}
	return dbs
}

func TestReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	for name, db := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Read(ctx, []byte("missing"))
			assert.ErrorIs(t, err, database.ErrKeyNotFound)

			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
			got, err = db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, db.Delete(ctx, []byte("k")))
			_, err = db.Read(ctx, []byte("k"))
			assert.ErrorIs(t, err, database.ErrKeyNotFound)
		})
	}
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	for name, db := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Write(ctx, []byte("old"), []byte("x")))
			require.NoError(t, db.Batch(ctx, []database.BatchOperation{
				database.Put([]byte("a"), []byte("1")),
				database.Put([]byte("b"), []byte("2")),
				database.Del([]byte("old")),
			}))

			for k, v := range map[string]string{"a": "1", "b": "2"} {
				got, err := db.Read(ctx, []byte(k))
				require.NoError(t, err)
				assert.Equal(t, v, string(got))
			}
			_, err := db.Read(ctx, []byte("old"))
			assert.ErrorIs(t, err, database.ErrKeyNotFound)

			err = db.Batch(ctx, []database.BatchOperation{{Type: database.BatchOpType(9), Key: []byte("c")}})
			assert.Error(t, err)
		})
	}
}

func TestIterator(t *testing.T) {
	ctx := context.Background()
	for name, db := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"d", "a", "c", "b", "e"} {
				require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
			}

			it, err := db.Iterator(ctx, []byte("b"), []byte("e"))
			require.NoError(t, err)
			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				assert.Equal(t, "v"+string(it.Key()), string(it.Value()))
			}
			require.NoError(t, it.Error())
			require.NoError(t, it.Close())
			assert.Equal(t, []string{"b", "c", "d"}, keys)

			it, err = db.Iterator(ctx, nil, nil)
			require.NoError(t, err)
			n := 0
			for it.Next() {
				n++
			}
			require.NoError(t, it.Close())
			assert.Equal(t, 5, n)
		})
	}
}

func TestManagerReopen(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{Pebble, LevelDB} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			m, err := Open(name, dir)
			require.NoError(t, err)
			db, err := m.OpenDB("state")
			require.NoError(t, err)
			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			require.NoError(t, m.CloseDB("state"))
			assert.ErrorIs(t, m.CloseDB("state"), database.ErrDBNotOpen)

			db, err = m.OpenDB("state")
			require.NoError(t, err)
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
			require.NoError(t, m.Close())
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("bolt", t.TempDir())
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}
