package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfileValid(t *testing.T) {
	path := writeProfile(t, `
threads: 8
ops: 100000
key_range: 5000
workload: mixed
insert_pct: 30
delete_pct: 20
initial_size: 1000
warmup: 500
`)

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, profile.Threads)
	assert.Equal(t, 100000, profile.Ops)
	assert.Equal(t, 5000, profile.KeyRange)
	assert.Equal(t, "mixed", profile.Workload)
	assert.Equal(t, 30, profile.InsertPct)
	assert.Equal(t, 20, profile.DeletePct)
	assert.Equal(t, 1000, profile.InitialSize)
	assert.Equal(t, 500, profile.Warmup)
}

func TestLoadProfileOutOfRangePercent(t *testing.T) {
	path := writeProfile(t, `
threads: 4
ops: 1000
key_range: 100
workload: mixed
insert_pct: 150
delete_pct: 20
`)

	_, err := LoadProfile(path)
	assert.Error(t, err, "insert_pct above 100 must fail schema validation")
}

func TestLoadProfilePercentagesExceedTotal(t *testing.T) {
	path := writeProfile(t, `
threads: 4
ops: 1000
key_range: 100
workload: mixed
insert_pct: 70
delete_pct: 60
`)

	_, err := LoadProfile(path)
	assert.Error(t, err, "insert_pct+delete_pct over 100 must fail")
}

func TestLoadProfileUnknownWorkload(t *testing.T) {
	path := writeProfile(t, `
threads: 4
ops: 1000
key_range: 100
workload: bogus
`)

	_, err := LoadProfile(path)
	assert.Error(t, err, "workload must be one of the recognized values")
}

func TestLoadProfileMalformedYAML(t *testing.T) {
	path := writeProfile(t, "threads: [this is not, a valid, mapping")

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadProfileUnknownField(t *testing.T) {
	path := writeProfile(t, `
threads: 4
bogus_field: 1
`)

	_, err := LoadProfile(path)
	assert.Error(t, err, "the strict YAML decoder must reject unknown fields")
}
