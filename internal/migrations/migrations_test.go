package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	names, err := fs.Glob(files, "sql/*.sql")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"sql/000001_create_rates.up.sql",
		"sql/000001_create_rates.down.sql",
		"sql/000002_create_rate_limits.up.sql",
		"sql/000002_create_rate_limits.down.sql",
		"sql/000003_widen_rate_precision.up.sql",
		"sql/000003_widen_rate_precision.down.sql",
	}, names)

	up, err := fs.ReadFile(files, "sql/000001_create_rates.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "PRIMARY KEY (from_currency, to_currency, rate_date)")
	assert.Contains(t, string(up), "CHECK (rate > 0)")
}

func TestRatePrecisionIsUnbounded(t *testing.T) {
	up, err := fs.ReadFile(files, "sql/000003_widen_rate_precision.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "ALTER COLUMN rate TYPE NUMERIC;")
}
