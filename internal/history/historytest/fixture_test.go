package historytest

import (
	"testing"

	"github.com/PinkDiamond1/ultralight/internal/history"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureBlock(t *testing.T) {
	parent := common.HexToHash("0x01")
	header, body, hash := FixtureBlock(3, parent)

	block, err := history.DecodeBlock(header, body)
	require.NoError(t, err)
	assert.Equal(t, hash, block.Hash())
	assert.Equal(t, parent, block.ParentHash())
	assert.Equal(t, uint64(3), block.NumberU64())

	// 相同参数生成相同的区块
	_, _, again := FixtureBlock(3, parent)
	assert.Equal(t, hash, again)
}
