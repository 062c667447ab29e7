package usecase

import (
	"context"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
)

// Store 是註冊表持久化的介面 (Driven Port)
// 不同 backend 自行決定 Record 的實作方式：
// 整檔重寫快照、append-only journal、或資料庫都可以，
// 只要 LoadAll 能還原出與寫入時相同的註冊表即可。
type Store interface {
	// LoadAll 於啟動時重建整個註冊表
	// 後端不存在既有資料時回傳空 map，不視為錯誤
	LoadAll(ctx context.Context) (map[string]*domain.Account, error)
	// Record 在一筆異動成功套用後持久化
	// accounts 為異動後的完整註冊表；寫入失敗必須回傳錯誤，不得吞掉
	Record(ctx context.Context, mut *domain.Mutation, accounts map[string]*domain.Account) error
	// Close 關閉底層資源
	Close() error
}
