package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+EnvDataDir, "/tmp/ultralight-env")
	t.Setenv(EnvPrefix+EnvChainID, "11")
	t.Setenv(EnvPrefix+EnvInMemory, "yes")

	cfg := config.NewConfig()
	require.NoError(t, applyEnvOverrides(cfg))

	assert.Equal(t, "/tmp/ultralight-env", cfg.Storage.DataDir)
	assert.Equal(t, uint16(11), cfg.History.ChainID)
	assert.True(t, cfg.Storage.InMemory)
}

func TestApplyEnvOverrides_InvalidChainID(t *testing.T) {
	t.Setenv(EnvPrefix+EnvChainID, "70000")

	cfg := config.NewConfig()
	assert.Error(t, applyEnvOverrides(cfg))
}

func TestParsePeers(t *testing.T) {
	id := "0x" + strings.Repeat("0a", 32)
	data := []byte(`[{"id":"` + id + `","ip":"10.0.0.1","port":9009}]`)

	records, err := parsePeers(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, byte(0x0a), records[0].ID[0])
	assert.Equal(t, "10.0.0.1:9009", records[0].Addr())

	_, err = parsePeers([]byte(`[{"id":"` + id + `","ip":"nope","port":1}]`))
	assert.Error(t, err)

	_, err = parsePeers([]byte(`{}`))
	assert.Error(t, err)
}

func TestReadHexFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.hex")
	require.NoError(t, os.WriteFile(plain, []byte("c0ffee\n"), 0600))
	b, err := readHexFile(plain)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc0, 0xff, 0xee}, b)

	prefixed := filepath.Join(dir, "prefixed.hex")
	require.NoError(t, os.WriteFile(prefixed, []byte("0xc0ffee"), 0600))
	b, err = readHexFile(prefixed)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc0, 0xff, 0xee}, b)

	odd := filepath.Join(dir, "odd.hex")
	require.NoError(t, os.WriteFile(odd, []byte("abc"), 0600))
	_, err = readHexFile(odd)
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "YES", " on "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"false", "0", "", "maybe"} {
		assert.False(t, parseBool(s), s)
	}
}
