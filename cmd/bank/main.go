package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	cli_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/bank/adapter/in/cli"
	journal_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/bank/adapter/out/journal"
	mysql_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/bank/adapter/out/mysql"
	textfile_adapter "github.com/JoeShih716/go-bank-ledger/internal/app/bank/adapter/out/textfile"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

const defaultConfigPath = "config/config.yaml"

// StorageConfig 選擇持久化 backend
type StorageConfig struct {
	// Backend: "file" (整檔重寫快照) / "journal" (append log + compaction) / "mysql"
	Backend string `yaml:"backend"`
	// SnapshotPath 快照檔路徑 (file 與 journal 共用)
	SnapshotPath string `yaml:"snapshot_path"`
	// JournalPath journal 檔路徑 (journal backend 用)
	JournalPath string `yaml:"journal_path"`
	// CompactEvery 累積幾筆異動後 compaction (journal backend 用)
	CompactEvery int `yaml:"compact_every"`
}

type Config struct {
	Storage StorageConfig  `yaml:"storage"`
	MySQL   mysql.Config   `yaml:"mysql"`
	Log     logging.Config `yaml:"log"`
}

func main() {
	// 1. 載入設定
	cfg := loadConfig()

	// 2. 初始化 Logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// 3. 依設定初始化持久化 backend (Driven Adapter)
	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to init store: " + err.Error())
	}
	defer store.Close()

	// 4. 初始化 UseCase (啟動時重建註冊表)
	bank, err := usecase.NewBank(ctx, store, logger)
	if err != nil {
		logger.Fatal("Failed to init bank: " + err.Error())
	}

	// 5. 跑互動式選單 (Driving Adapter)，結束即退出
	menu := cli_adapter.NewMenu(bank, bufio.NewReader(os.Stdin), os.Stdout)
	menu.Run(ctx)
}

// buildStore 依 backend 名稱建立 store
func buildStore(cfg Config, logger *logging.Logger) (usecase.Store, error) {
	switch cfg.Storage.Backend {
	case "file":
		return textfile_adapter.NewStore(cfg.Storage.SnapshotPath, logger.Named("textfile"))
	case "journal":
		return journal_adapter.NewStore(
			cfg.Storage.SnapshotPath,
			cfg.Storage.JournalPath,
			cfg.Storage.CompactEvery,
			logger.Named("journal"),
		)
	case "mysql":
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return mysql_adapter.NewStore(client)
	default:
		log.Fatalf("Invalid storage backend: %q", cfg.Storage.Backend)
		return nil, nil
	}
}

func loadConfig() Config {
	var cfg Config
	cfgData, err := os.ReadFile(defaultConfigPath)
	if err == nil {
		if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
			log.Fatalf("Failed to parse config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("Failed to read config file: %v", err)
	}
	// 設定檔不存在時整包走預設值，CLI 不該因為沒有設定檔就起不來

	// 補全預設配置 (如果 yaml 沒寫)
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "data/accounts.txt"
	}
	if cfg.Storage.JournalPath == "" {
		cfg.Storage.JournalPath = "data/journal.log"
	}
	if cfg.Storage.CompactEvery == 0 {
		cfg.Storage.CompactEvery = journal_adapter.DefaultCompactEvery
	}
	if cfg.MySQL.Port == 0 {
		cfg.MySQL.Port = 3306
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 10
	}
	if cfg.MySQL.MaxIdleConns == 0 {
		cfg.MySQL.MaxIdleConns = 2
	}
	if cfg.MySQL.ConnMaxLifetime == 0 {
		cfg.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	return cfg
}
