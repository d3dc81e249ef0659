package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	tests := []struct {
		name          string
		dsn           string
		debug         bool
		expectedError bool
	}{
		{name: "memory database", dsn: ":memory:", debug: false},
		{name: "memory database with debug logging", dsn: ":memory:", debug: true},
		{name: "file database", dsn: "/tmp/test_nudl_cache.db", debug: false},
		{name: "nested directory creation", dsn: "/tmp/nested/path/test_nudl_cache.db", debug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.dsn != ":memory:" {
				defer func() {
					os.Remove(tt.dsn)
					os.Remove(filepath.Dir(tt.dsn))
				}()
			}

			s, err := Open(tt.dsn, tt.debug)
			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, s)
			defer s.Close()

			assert.True(t, s.db.Migrator().HasTable(&Specialization{}))
		})
	}
}

func TestRecordAndLookup(t *testing.T) {
	s, err := Open(":memory:", false)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Lookup("A", "g", "Int")
	require.NoError(t, err)
	assert.False(t, ok, "an unrecorded signature must miss")

	require.NoError(t, s.Record("A", "g", "Int", "Int"))

	resultType, ok, err := s.Lookup("A", "g", "Int")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Int", resultType)
}

func TestRecordReplacesExistingEntry(t *testing.T) {
	s, err := Open(":memory:", false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record("A", "g", "Int", "Int"))
	require.NoError(t, s.Record("A", "g", "Int", "Float"))

	resultType, ok, err := s.Lookup("A", "g", "Int")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Float", resultType, "re-recording the same signature must replace, not duplicate")

	var count int64
	require.NoError(t, s.db.Model(&Specialization{}).Where("module = ? AND function = ? AND signature = ?", "A", "g", "Int").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLookupDistinguishesSignatures(t *testing.T) {
	s, err := Open(":memory:", false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record("A", "g", "Int", "Int"))
	require.NoError(t, s.Record("A", "g", "Float", "Float"))

	_, ok, err := s.Lookup("A", "g", "Int")
	require.NoError(t, err)
	assert.True(t, ok)

	rt, ok, err := s.Lookup("A", "g", "Float")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Float", rt)

	_, ok, err = s.Lookup("A", "h", "Int")
	require.NoError(t, err)
	assert.False(t, ok, "a different function name must not share cache entries")
}

func TestOpenDirectoryCreation(t *testing.T) {
	tempDir := fmt.Sprintf("/tmp/nudl_cache_test_%d", os.Getpid())
	dbPath := filepath.Join(tempDir, "nested", "deep", "cache.db")
	defer os.RemoveAll(tempDir)

	s, err := Open(dbPath, false)
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	assert.DirExists(t, filepath.Dir(dbPath))
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}
