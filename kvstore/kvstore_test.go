// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package kvstore

import (
	"testing"

	"github.com/nyxchain/nyxd/errs"
)

func TestOpenReturnsSingletonPerPath(t *testing.T) {
	path := t.TempDir()
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	b, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if a != b {
		t.Fatalf("Open(path) returned distinct handles for the same path")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("test-bucket", false)
		if err != nil {
			return err
		}
		return b.Put([]byte("key"), []byte("value"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("test-bucket", false)
		if err != nil {
			return err
		}
		v, err := b.Get([]byte("key"))
		if err != nil {
			return err
		}
		if string(v) != "value" {
			t.Errorf("Get = %q, want %q", v, "value")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestGetMissingKeyReturnsDBKeyNotFound(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("test-bucket", false)
		if err != nil {
			return err
		}
		_, err = b.Get([]byte("missing"))
		return err
	})
	if !errs.Is(err, errs.DBKeyNotFound) {
		t.Fatalf("Get(missing) = %v, want errs.DBKeyNotFound", err)
	}
}

func TestDupSortAllowsMultipleValuesPerKey(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	key := []byte("candidate")
	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("dup-bucket", true)
		if err != nil {
			return err
		}
		if err := b.Put(key, []byte("edge-1")); err != nil {
			return err
		}
		return b.Put(key, []byte("edge-2"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("dup-bucket", true)
		if err != nil {
			return err
		}
		cur, err := b.Cursor()
		if err != nil {
			return err
		}
		defer cur.Close()
		values, err := cur.GetAll(key)
		if err != nil {
			return err
		}
		if len(values) != 2 {
			t.Errorf("GetAll returned %d values, want 2", len(values))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestDeleteExactRemovesOnlyMatchingDuplicate(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	key := []byte("candidate")
	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("dup-bucket", true)
		if err != nil {
			return err
		}
		if err := b.Put(key, []byte("edge-1")); err != nil {
			return err
		}
		return b.Put(key, []byte("edge-2"))
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("dup-bucket", true)
		if err != nil {
			return err
		}
		return b.DeleteExact(key, []byte("edge-1"))
	})
	if err != nil {
		t.Fatalf("DeleteExact: %v", err)
	}

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("dup-bucket", true)
		if err != nil {
			return err
		}
		cur, err := b.Cursor()
		if err != nil {
			return err
		}
		defer cur.Close()
		values, err := cur.GetAll(key)
		if err != nil {
			return err
		}
		if len(values) != 1 || string(values[0]) != "edge-2" {
			t.Errorf("GetAll after DeleteExact = %v, want [edge-2]", values)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestGrowMapDoublesAndStaysWritable(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	env.mu.Lock()
	before := env.mapSize
	gerr := env.growMap()
	after := env.mapSize
	env.mu.Unlock()
	if gerr != nil {
		t.Fatalf("growMap: %v", gerr)
	}
	if after != before*mapGrowthFactor {
		t.Fatalf("mapSize = %d after growth, want %d", after, before*mapGrowthFactor)
	}

	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("post-growth", false)
		if err != nil {
			return err
		}
		return b.Put([]byte("k"), []byte("v"))
	})
	if err != nil {
		t.Fatalf("Update after growth: %v", err)
	}
}

func TestManyPutsCountAndOrder(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	const n = 1000
	value := make([]byte, 4096)
	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("bulk", false)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			k := []byte{byte(i >> 8), byte(i)}
			if err := b.Put(k, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("bulk", false)
		if err != nil {
			return err
		}
		keys, err := b.ListKeys()
		if err != nil {
			return err
		}
		if len(keys) != n {
			t.Errorf("ListKeys returned %d keys, want %d", len(keys), n)
		}
		for i := 1; i < len(keys); i++ {
			if !bytesLess(keys[i-1], keys[i]) {
				t.Errorf("keys not ascending at index %d", i)
				break
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

func TestListKeysAscendingOrder(t *testing.T) {
	env, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer env.Close()

	err = env.Update(func(tx *Tx) error {
		b, err := tx.Bucket("ordered-bucket", false)
		if err != nil {
			return err
		}
		for _, k := range [][]byte{[]byte("c"), []byte("a"), []byte("b")} {
			if err := b.Put(k, []byte("v")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	err = env.View(func(tx *Tx) error {
		b, err := tx.Bucket("ordered-bucket", false)
		if err != nil {
			return err
		}
		keys, err := b.ListKeys()
		if err != nil {
			return err
		}
		want := []string{"a", "b", "c"}
		if len(keys) != len(want) {
			t.Fatalf("ListKeys returned %d keys, want %d", len(keys), len(want))
		}
		for i, k := range keys {
			if string(k) != want[i] {
				t.Errorf("ListKeys[%d] = %q, want %q", i, k, want[i])
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
