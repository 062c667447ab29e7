package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID         string  `gorm:"primaryKey;size:32"`
	Credential string  `gorm:"size:32"`
	Balance    float64 `gorm:""`
	UpdatedAt  int64   `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// Store 是 MySQL 持久化 backend (GORM)
// Record 把整個註冊表 upsert 進資料庫並刪掉不在其中的列，
// 對外契約與快照 backend 完全相同 (不做增量更新)
type Store struct {
	client *mysql.Client
}

// NewStore 建立 MySQL store 並確保 accounts 表存在
func NewStore(client *mysql.Client) (*Store, error) {
	if err := client.DB().AutoMigrate(&sqlAccount{}); err != nil {
		return nil, fmt.Errorf("migrate accounts table: %w", err)
	}
	return &Store{client: client}, nil
}

// LoadAll 載入所有帳戶
func (s *Store) LoadAll(ctx context.Context) (map[string]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make(map[string]*domain.Account, len(rows))
	for _, row := range rows {
		accounts[row.ID] = domain.NewAccount(row.ID, row.Credential, row.Balance)
	}
	return accounts, nil
}

// Record 在單一資料庫交易內同步整個註冊表：
// 1) 現存帳戶全部 upsert 2) 刪除註冊表裡已不存在的列
func (s *Store) Record(ctx context.Context, mut *domain.Mutation, accounts map[string]*domain.Account) error {
	rows := make([]sqlAccount, 0, len(accounts))
	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		rows = append(rows, sqlAccount{
			ID:         account.ID,
			Credential: account.Credential,
			Balance:    account.Balance,
		})
		ids = append(ids, account.ID)
	}

	err := s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return err
			}
		}
		prune := tx
		if len(ids) > 0 {
			prune = prune.Where("id NOT IN ?", ids)
		} else {
			// 註冊表已清空，整張表一起清
			prune = prune.Session(&gorm.Session{AllowGlobalUpdate: true})
		}
		return prune.Delete(&sqlAccount{}).Error
	})
	if err != nil {
		return fmt.Errorf("sync accounts: %w", err)
	}
	return nil
}

// Close 關閉資料庫連線
func (s *Store) Close() error {
	return s.client.Close()
}

var _ usecase.Store = (*Store)(nil)
