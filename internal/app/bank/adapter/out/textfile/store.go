package textfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
)

// Delimiter 快照欄位分隔符，欄位順序固定為 id,credential,balance
const Delimiter = ","

// 每行固定三個欄位，沒有表頭、checksum 或版本號
const fieldsPerLine = 3

// Store 是純文字快照的持久化 backend
// 每筆異動都整檔重寫一次 (規模只有少數帳戶，夠用)；
// 寫入採「先寫 .tmp 再 rename」的原子替換，中途失敗不會弄壞原檔。
type Store struct {
	path   string
	logger *logging.Logger
}

// NewStore 建立快照 store，必要時先建立目錄
func NewStore(path string, logger *logging.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &Store{path: path, logger: logger}, nil
}

// LoadAll 讀取快照並重建註冊表
// 檔案不存在視為空註冊表；欄位數不對或餘額解析失敗的行直接跳過 (記 warn)，不視為致命
func (s *Store) LoadAll(ctx context.Context) (map[string]*domain.Account, error) {
	accounts := make(map[string]*domain.Account)

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return accounts, nil
		}
		return nil, fmt.Errorf("open snapshot %s: %w", s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		account, ok := s.parseLine(text, line)
		if !ok {
			continue
		}
		accounts[account.ID] = account
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	return accounts, nil
}

// parseLine 解析單行，格式錯誤回傳 ok=false
func (s *Store) parseLine(text string, line int) (*domain.Account, bool) {
	fields := strings.Split(text, Delimiter)
	if len(fields) != fieldsPerLine {
		s.logger.Warn("skipping malformed snapshot line",
			zap.Int("line", line), zap.Int("fields", len(fields)))
		return nil, false
	}
	balance, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		s.logger.Warn("skipping snapshot line with bad balance",
			zap.Int("line", line), zap.Error(err))
		return nil, false
	}
	return domain.NewAccount(fields[0], fields[1], balance), true
}

// Record 整檔重寫快照
// mut 在這個 backend 只是「該存檔了」的訊號，內容不使用
func (s *Store) Record(ctx context.Context, mut *domain.Mutation, accounts map[string]*domain.Account) error {
	return s.WriteSnapshot(accounts)
}

// WriteSnapshot 將整個註冊表序列化到快照檔
// 先寫暫存檔，成功後 rename 取代原檔 (原子替換)
func (s *Store) WriteSnapshot(accounts map[string]*domain.Account) error {
	tmp := s.path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create snapshot tmp: %w", err)
	}
	// rename 成功後暫存檔已不在，這裡只清中途失敗留下的殘檔
	defer os.Remove(tmp)

	writer := bufio.NewWriter(file)
	for _, account := range accounts {
		line := strings.Join([]string{
			account.ID,
			account.Credential,
			strconv.FormatFloat(account.Balance, 'g', -1, 64),
		}, Delimiter)
		if _, err := writer.WriteString(line + "\n"); err != nil {
			file.Close()
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close 這個 backend 沒有常駐資源
func (s *Store) Close() error {
	return nil
}

var _ usecase.Store = (*Store)(nil)
