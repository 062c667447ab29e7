package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/adapter/out/textfile"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
	"github.com/JoeShih716/go-bank-ledger/pkg/wal"
)

// DefaultCompactEvery 預設累積幾筆異動後做一次 compaction
const DefaultCompactEvery = 64

// Store 是 append-only journal 的持久化 backend
// 每筆異動 append 一筆 Mutation 到 log (含 fsync)，取代整檔重寫；
// log 長到門檻時 compaction：把目前註冊表寫成快照、清空 log。
// 啟動時先讀快照、再重放 log，結果等同於快照 backend。
type Store struct {
	snapshot *textfile.Store
	log      *wal.WAL
	logger   *logging.Logger

	compactEvery int
	mu           sync.Mutex
	// 自上次 compaction 以來 append 的筆數
	appended int
}

// NewStore 建立 journal store
// snapshotPath 與 logPath 不可相同；compactEvery <= 0 時用預設值
func NewStore(snapshotPath, logPath string, compactEvery int, logger *logging.Logger) (*Store, error) {
	if compactEvery <= 0 {
		compactEvery = DefaultCompactEvery
	}
	snapshot, err := textfile.NewStore(snapshotPath, logger)
	if err != nil {
		return nil, err
	}
	log, err := wal.New(logPath)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", logPath, err)
	}
	return &Store{
		snapshot:     snapshot,
		log:          log,
		logger:       logger,
		compactEvery: compactEvery,
	}, nil
}

// LoadAll 重建註冊表：先讀快照，再重放 journal
// 重放時用 RefID 去重 (同一筆異動只套用一次)；
// 壞掉的記錄或套用失敗的記錄跳過並記 warn，不讓單筆問題擋住啟動
func (s *Store) LoadAll(ctx context.Context) (map[string]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.snapshot.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	replayed := 0
	err = s.log.ReadAll(func(jsonRaw []byte) error {
		var mut domain.Mutation
		if err := json.Unmarshal(jsonRaw, &mut); err != nil {
			s.logger.Warn("skipping malformed journal record", zap.Error(err))
			return nil
		}
		if _, dup := seen[mut.RefID]; dup {
			return nil
		}
		seen[mut.RefID] = struct{}{}
		replayed++
		if err := apply(accounts, &mut); err != nil {
			s.logger.Warn("skipping journal record that failed to apply",
				zap.Uint8("type", uint8(mut.Type)),
				zap.String("account", mut.Account),
				zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replay journal: %w", err)
	}

	// compaction 計數從目前 log 長度接著算
	s.appended = replayed
	if replayed > 0 {
		s.logger.Info("journal replayed", zap.Int("records", replayed))
	}
	return accounts, nil
}

// Record 持久化一筆異動
// append + fsync 完成即視為已儲存；到達門檻時順手做 compaction。
// compaction 失敗不影響這筆異動的持久性 (log 還在)，記 error 後下次再試
func (s *Store) Record(ctx context.Context, mut *domain.Mutation, accounts map[string]*domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.log.Append(mut); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	s.appended++

	if s.appended >= s.compactEvery {
		if err := s.compactLocked(accounts); err != nil {
			s.logger.Error("journal compaction failed", zap.Error(err))
		}
	}
	return nil
}

// compactLocked 寫出快照並清空 log
// 順序很重要：快照先落地，log 才能清；中間失敗時 log 保持原樣，狀態仍可重建
func (s *Store) compactLocked(accounts map[string]*domain.Account) error {
	if err := s.snapshot.WriteSnapshot(accounts); err != nil {
		return err
	}
	if err := s.log.Reset(); err != nil {
		return err
	}
	s.appended = 0
	s.logger.Debug("journal compacted", zap.Int("accounts", len(accounts)))
	return nil
}

// Close 關閉 journal 檔案
func (s *Store) Close() error {
	return s.log.Close()
}

// apply 把單筆異動套用到註冊表 (重放用，不寫任何檔案)
// 套用方式是「指定異動後的狀態」而不是重算一次加減：
// compaction 把快照寫出去之後、清 log 之前如果當機，留下來的記錄
// 已經折進快照裡，重放時再指定一次同樣的結果也不會跑掉
func apply(accounts map[string]*domain.Account, mut *domain.Mutation) error {
	switch mut.Type {
	case domain.MutationTypeCreate:
		accounts[mut.Account] = domain.NewAccount(mut.Account, mut.Credential, mut.BalanceAfter)
		return nil
	case domain.MutationTypeDeposit, domain.MutationTypeWithdraw, domain.MutationTypeTopUp:
		account, ok := accounts[mut.Account]
		if !ok {
			return domain.ErrAccountNotFound
		}
		account.Balance = mut.BalanceAfter
		return nil
	case domain.MutationTypeTransfer:
		from, ok := accounts[mut.Account]
		if !ok {
			return domain.ErrAccountNotFound
		}
		to, ok := accounts[mut.To]
		if !ok {
			return domain.ErrAccountNotFound
		}
		from.Balance = mut.BalanceAfter
		to.Balance = mut.ToBalanceAfter
		return nil
	case domain.MutationTypeDelete:
		// 刪不存在的帳戶視為已完成
		delete(accounts, mut.Account)
		return nil
	default:
		return fmt.Errorf("unknown mutation type %d", mut.Type)
	}
}

var _ usecase.Store = (*Store)(nil)
