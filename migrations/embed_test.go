package migrations

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	src, err := iofs.New(FS, ".")
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var versions []uint
	for {
		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "version %d has no up migration", version)
		_ = up.Close()

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		body, err := io.ReadAll(down)
		require.NoError(t, err)
		_ = down.Close()
		assert.Contains(t, string(body), "DROP TABLE")

		versions = append(versions, version)
		next, err := src.Next(version)
		if err != nil {
			break
		}
		version = next
	}

	assert.Equal(t, []uint{1, 2}, versions)
}
