package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/pkg/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ============================================================================
//                              环境变量
// ============================================================================

// 支持的环境变量（均使用 ULTRALIGHT_ 前缀）
const (
	EnvPrefix   = "ULTRALIGHT_"
	EnvDataDir  = "DATA_DIR"
	EnvNodeID   = "NODE_ID"
	EnvChainID  = "CHAIN_ID"
	EnvInMemory = "IN_MEMORY"
	EnvPeers    = "PEERS_FILE"
)

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
func applyEnvOverrides(cfg *config.Config) error {
	if v := os.Getenv(EnvPrefix + EnvDataDir); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv(EnvPrefix + EnvNodeID); v != "" {
		cfg.Identity.NodeID = v
	}

	if v := os.Getenv(EnvPrefix + EnvChainID); v != "" {
		id, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvChainID, err)
		}
		cfg.History.ChainID = uint16(id)
	}

	if v := os.Getenv(EnvPrefix + EnvInMemory); v != "" {
		cfg.Storage.InMemory = parseBool(v)
	}
	return nil
}

// ============================================================================
//                              节点列表文件
// ============================================================================

// loadPeersFile 从 JSON 文件读取已知节点
//
// 文件格式与 peers 子命令的输出中的节点项一致：
//
//	[{"id": "0x...", "ip": "127.0.0.1", "port": 9009}]
func loadPeersFile(path string) ([]types.PeerRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的文件路径是预期行为
	if err != nil {
		return nil, err
	}
	return parsePeers(data)
}

func parsePeers(data []byte) ([]types.PeerRecord, error) {
	var addrs []types.PeerAddr
	if err := json.Unmarshal(data, &addrs); err != nil {
		return nil, fmt.Errorf("parse peers: %w", err)
	}

	records := make([]types.PeerRecord, 0, len(addrs))
	for i, a := range addrs {
		ip := net.ParseIP(a.IP)
		if ip == nil {
			return nil, fmt.Errorf("peer %d: invalid ip %q", i, a.IP)
		}
		records = append(records, types.PeerRecord{ID: a.ID, IP: ip, Port: a.Port})
	}
	return records, nil
}

// ============================================================================
//                              辅助函数
// ============================================================================

// readHexFile 读取十六进制文本文件（0x 前缀可选）
func readHexFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的文件路径是预期行为
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") {
		text = "0x" + text
	}
	b, err := hexutil.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
