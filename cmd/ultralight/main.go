// Package main 提供 ultralight 命令行入口
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PinkDiamond1/ultralight"
	"github.com/PinkDiamond1/ultralight/config"
	"github.com/PinkDiamond1/ultralight/internal/explorer"
	"github.com/PinkDiamond1/ultralight/internal/util/logger"
	"github.com/PinkDiamond1/ultralight/pkg/lib/log"
)

var cmdLogger = log.Logger("ultralight/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖（「这次运行」想怎么跑）
//   JSON 配置文件：持久化配置（「这个节点」的固定配置）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径")
	dataDir    = flag.String("data-dir", "", "数据目录（默认: ./data）")
	nodeID     = flag.String("node-id", "", "本地节点 ID（64 位十六进制）")
	chainID    = flag.Uint("chain-id", 1, "内容键中的链 ID")
	peersFile  = flag.String("peers", "", "已知节点列表文件（JSON）")
	inMemory   = flag.Bool("in-memory", false, "使用纯内存存储")
	timeout    = flag.Duration("timeout", 30*time.Second, "单次重建超时")

	logLevel = flag.String("log-level", "", "日志级别，例如 info 或 explorer=debug,warn")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(ultralight.VersionInfo())
		return nil
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		return nil
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	setupLogging(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	node, err := ultralight.Start(ctx, ultralight.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	if err := seedPeers(node); err != nil {
		return err
	}

	args := flag.Args()
	switch args[0] {
	case "import":
		return cmdImport(node, args[1:])
	case "block":
		return cmdBlock(ctx, node, args[1:])
	case "peers":
		return printJSON(node.AddressBook())
	case "run":
		cmdLogger.Info("节点运行中", "node", node.ID().ShortString(), "version", ultralight.Version)
		fmt.Println("节点已启动，按 Ctrl+C 退出")
		<-ctx.Done()
		fmt.Println("\n正在关闭节点...")
		return nil
	default:
		printHelp()
		return fmt.Errorf("未知命令: %s", args[0])
	}
}

// buildConfig 构建配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（ULTRALIGHT_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if isFlagSet("data-dir") {
		cfg.Storage.DataDir = *dataDir
	}
	if isFlagSet("node-id") {
		cfg.Identity.NodeID = *nodeID
	}
	if isFlagSet("chain-id") {
		if *chainID > 0xffff {
			return nil, fmt.Errorf("chain-id out of range: %d", *chainID)
		}
		cfg.History.ChainID = uint16(*chainID)
	}
	if isFlagSet("in-memory") {
		cfg.Storage.InMemory = *inMemory
	}
	if isFlagSet("log-level") {
		cfg.Log.Level = *logLevel
	}

	return cfg, cfg.Validate()
}

// setupLogging 安装日志 Handler
//
// 设置了 ULTRALIGHT_LOG_LEVEL 时以环境变量为准。
func setupLogging(cfg *config.Config) {
	if os.Getenv(logger.EnvLogLevel) != "" {
		logger.Setup(os.Stderr, nil)
		return
	}
	logger.Setup(os.Stderr, cfg.Log.LoggerConfig())
}

// seedPeers 把节点列表文件中的节点加入路由表
func seedPeers(node *ultralight.Node) error {
	path := *peersFile
	if path == "" {
		path = os.Getenv(EnvPrefix + EnvPeers)
	}
	if path == "" {
		return nil
	}

	records, err := loadPeersFile(path)
	if err != nil {
		return fmt.Errorf("加载节点列表失败: %w", err)
	}
	for _, rec := range records {
		if _, err := node.AddPeer(rec); err != nil {
			cmdLogger.Warn("跳过节点", "peer", rec.ID.ShortString(), "error", err)
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 子命令
// ═══════════════════════════════════════════════════════════════════════════

// cmdImport 把区块头和区块体写入本地存储
func cmdImport(node *ultralight.Node, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("用法: ultralight import <header.hex> <body.hex>")
	}
	header, err := readHexFile(args[0])
	if err != nil {
		return err
	}
	body, err := readHexFile(args[1])
	if err != nil {
		return err
	}

	hash, err := node.Offer(header, body)
	if err != nil {
		return fmt.Errorf("导入失败: %w", err)
	}
	fmt.Println(hash.Hex())
	return nil
}

// blockSummary block 子命令的输出
type blockSummary struct {
	Key          string `json:"key"`
	State        string `json:"state"`
	Hash         string `json:"hash,omitempty"`
	Number       uint64 `json:"number,omitempty"`
	ParentHash   string `json:"parent_hash,omitempty"`
	Transactions int    `json:"transactions,omitempty"`
	Uncles       int    `json:"uncles,omitempty"`
	Error        string `json:"error,omitempty"`
}

func summarize(res *explorer.Result) blockSummary {
	s := blockSummary{Key: res.Key, State: res.State.String()}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	if res.Block != nil {
		s.Hash = res.Block.Hash().Hex()
		s.Number = res.Block.NumberU64()
		s.ParentHash = res.Block.ParentHash().Hex()
		s.Transactions = len(res.Block.Transactions())
		s.Uncles = len(res.Block.Uncles())
	}
	return s
}

// cmdBlock 重建区块，可沿父哈希继续回溯
func cmdBlock(ctx context.Context, node *ultralight.Node, args []string) error {
	fs := flag.NewFlagSet("block", flag.ContinueOnError)
	parents := fs.Int("parents", 0, "沿父哈希继续重建的区块数")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("用法: ultralight block [-parents N] <0x区块哈希>")
	}

	var summaries []blockSummary

	reqCtx, cancel := context.WithTimeout(ctx, *timeout)
	res := node.Reconstruct(reqCtx, fs.Arg(0))
	cancel()
	summaries = append(summaries, summarize(res))

	for i := 0; i < *parents && res.OK(); i++ {
		reqCtx, cancel := context.WithTimeout(ctx, *timeout)
		res = node.FollowParent(reqCtx, res.Block)
		cancel()
		summaries = append(summaries, summarize(res))
	}

	if err := printJSON(summaries); err != nil {
		return err
	}
	if !res.OK() {
		return res.Err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHelp() {
	fmt.Println("ultralight - Portal History 子网轻量客户端")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  ultralight [选项] <命令> [参数]")
	fmt.Println()
	fmt.Println("命令:")
	fmt.Println("  import <header.hex> <body.hex>     导入区块头和区块体到本地存储")
	fmt.Println("  block [-parents N] <0x区块哈希>     重建区块，可沿父哈希回溯 N 个")
	fmt.Println("  peers                              输出按距离分桶的已知节点（JSON）")
	fmt.Println("  run                                启动节点直到收到退出信号")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  ULTRALIGHT_DATA_DIR      数据目录")
	fmt.Println("  ULTRALIGHT_NODE_ID       本地节点 ID")
	fmt.Println("  ULTRALIGHT_CHAIN_ID      链 ID")
	fmt.Println("  ULTRALIGHT_IN_MEMORY     使用纯内存存储 (true/false)")
	fmt.Println("  ULTRALIGHT_PEERS_FILE    已知节点列表文件")
	fmt.Println("  ULTRALIGHT_LOG_LEVEL     日志级别（优先于配置文件）")
	fmt.Println("  ULTRALIGHT_LOG_FORMAT    日志格式 (text/json)")
}
