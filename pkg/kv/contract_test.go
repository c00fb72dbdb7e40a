package kv_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/siteadmin/pkg/kv"
	"github.com/stretchr/testify/require"
)

// testStoreContract exercises behaviour every driver must share. Expiry is
// covered per driver since only the memory store has a controllable clock.
func testStoreContract(t *testing.T, st kv.Store) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := st.Get(ctx, "contract:missing")
		require.ErrorIs(t, err, kv.ErrNotFound)

		ok, err := st.Exists(ctx, "contract:missing")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "contract:set", "one", time.Minute))
		require.NoError(t, st.Set(ctx, "contract:set", "two", time.Minute))

		v, err := st.Get(ctx, "contract:set")
		require.NoError(t, err)
		require.Equal(t, "two", v)

		ok, err := st.Exists(ctx, "contract:set")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("incr counts from one", func(t *testing.T) {
		for want := int64(1); want <= 5; want++ {
			n, err := st.IncrWithExpiry(ctx, "contract:counter", time.Minute)
			require.NoError(t, err)
			require.Equal(t, want, n)
		}
	})

	t.Run("incr on non integer", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "contract:text", "abc", time.Minute))
		_, err := st.IncrWithExpiry(ctx, "contract:text", time.Minute)
		require.ErrorIs(t, err, kv.ErrNotInteger)
	})

	t.Run("getdel is single use", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "contract:once", "token", time.Minute))

		v, err := st.GetDel(ctx, "contract:once")
		require.NoError(t, err)
		require.Equal(t, "token", v)

		_, err = st.GetDel(ctx, "contract:once")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("delete many", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "contract:a", "1", time.Minute))
		require.NoError(t, st.Set(ctx, "contract:b", "1", time.Minute))
		require.NoError(t, st.Delete(ctx, "contract:a", "contract:b", "contract:never"))

		for _, k := range []string{"contract:a", "contract:b"} {
			ok, err := st.Exists(ctx, k)
			require.NoError(t, err)
			require.False(t, ok)
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const workers = 50
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := st.IncrWithExpiry(ctx, "contract:burst", time.Minute)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		v, err := st.Get(ctx, "contract:burst")
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(workers), v)
	})

	t.Run("concurrent getdel yields exactly one winner", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "contract:race", "token", time.Minute))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := st.GetDel(ctx, "contract:race"); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, wins)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
	})
}
