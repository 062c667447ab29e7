package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
)

// ID 與密碼的固定位數
// 帳號首位不為 0 (維持固定長度)；密碼允許前導 0，且不要求全域唯一
const (
	AccountIDDigits  = 5
	CredentialDigits = 4
)

// Bank 是核心業務邏輯層：持有註冊表並協調所有異動
//
// 結構:
//
//	accounts: 帳戶註冊表 (ID -> Account)
//	mu: RWMutex 序列化所有操作；Transfer 的雙帳戶異動在同一臨界區內完成
//	store: 持久化 backend；每筆成功異動都會在回傳前寫入
type Bank struct {
	accounts map[string]*domain.Account
	mu       sync.RWMutex
	store    Store
	logger   *logging.Logger
}

// NewBank 建立 Bank 並從 store 重建註冊表
//
// 參數:
//
//	ctx: 上下文
//	store: 持久化 backend
//	logger: Logger 實例
//
// 回傳:
//
//	*Bank: Bank 實例
//	error: 註冊表重建失敗
func NewBank(ctx context.Context, store Store, logger *logging.Logger) (*Bank, error) {
	accounts, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if accounts == nil {
		accounts = make(map[string]*domain.Account)
	}
	logger.Info("registry loaded", zap.Int("accounts", len(accounts)))
	return &Bank{
		accounts: accounts,
		store:    store,
		logger:   logger,
	}, nil
}

// CreateAccount 建立新帳戶
// 帳號以均勻隨機產生並檢查碰撞 (重試直到沒撞)；密碼同樣隨機產生但不檢查唯一。
// 密碼只會在這裡回傳一次，之後無法再查詢。
func (b *Bank) CreateAccount(ctx context.Context) (*domain.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var id string
	for {
		id = randomDigits(AccountIDDigits, false)
		if _, exists := b.accounts[id]; !exists {
			break
		}
	}
	credential := randomDigits(CredentialDigits, true)

	account := domain.NewAccount(id, credential, 0)
	b.accounts[id] = account

	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:       domain.MutationTypeCreate,
		Account:    id,
		Credential: credential,
	}); err != nil {
		delete(b.accounts, id)
		return nil, err
	}
	b.logger.Info("account created", zap.String("account", id))
	return account, nil
}

// Login 登入
// 帳號不存在與密碼不符都回傳 ErrAuthenticationFailed，不區分兩者
func (b *Bank) Login(ctx context.Context, id, credential string) (*domain.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	account, ok := b.accounts[id]
	if !ok || account.Credential != credential {
		return nil, domain.ErrAuthenticationFailed
	}
	return account, nil
}

// DeleteAccount 刪除帳戶
// 無條件刪除，不檢查餘額是否為零
func (b *Bank) DeleteAccount(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	account, ok := b.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	delete(b.accounts, id)

	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:    domain.MutationTypeDelete,
		Account: id,
	}); err != nil {
		b.accounts[id] = account
		return err
	}
	b.logger.Info("account deleted", zap.String("account", id))
	return nil
}

// Deposit 存款並持久化
func (b *Bank) Deposit(ctx context.Context, account *domain.Account, amount float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := account.Deposit(amount); err != nil {
		return err
	}
	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:    domain.MutationTypeDeposit,
		Account: account.ID,
		Amount:  amount,
	}); err != nil {
		account.Balance -= amount
		return err
	}
	return nil
}

// Withdraw 提款並持久化
func (b *Bank) Withdraw(ctx context.Context, account *domain.Account, amount float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := account.Withdraw(amount); err != nil {
		return err
	}
	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:    domain.MutationTypeWithdraw,
		Account: account.ID,
		Amount:  amount,
	}); err != nil {
		account.Balance += amount
		return err
	}
	return nil
}

// TopUpPhone 電話儲值並持久化
// 檢核全部通過才會扣款，成功時回傳確認訊息
func (b *Bank) TopUpPhone(ctx context.Context, account *domain.Account, phone string, amount float64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	confirmation, err := account.TopUpPhone(phone, amount)
	if err != nil {
		return "", err
	}
	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:    domain.MutationTypeTopUp,
		Account: account.ID,
		Amount:  amount,
		Phone:   phone,
	}); err != nil {
		account.Balance += amount
		return "", err
	}
	return confirmation, nil
}

// Transfer 轉帳：扣款與入帳在同一臨界區內完成，視為單一邏輯單位
// 1) 目的帳戶必須存在 2) 不允許轉給自己 3) 扣款失敗就不入帳，也不持久化
func (b *Bank) Transfer(ctx context.Context, from *domain.Account, toID string, amount float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	to, ok := b.accounts[toID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if from.ID == toID {
		return domain.ErrSelfTransfer
	}

	if err := from.Withdraw(amount); err != nil {
		return err
	}
	if err := to.Deposit(amount); err != nil {
		// Withdraw 已檢核過 amount，理論上不會走到；補回扣款維持不變量
		from.Balance += amount
		return err
	}

	if err := b.persistLocked(ctx, &domain.Mutation{
		Type:    domain.MutationTypeTransfer,
		Account: from.ID,
		To:      toID,
		Amount:  amount,
	}); err != nil {
		from.Balance += amount
		to.Balance -= amount
		return err
	}
	return nil
}

// Balance 取得帳戶目前餘額
func (b *Bank) Balance(account *domain.Account) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return account.Balance
}

// Count 註冊表內的帳戶數
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.accounts)
}

// persistLocked 補齊異動欄位後寫入 store
// 呼叫端必須已持有 b.mu；寫入失敗回傳 ErrStoreWriteFailed (包住底層錯誤)
func (b *Bank) persistLocked(ctx context.Context, mut *domain.Mutation) error {
	mut.RefID = uuid.New()
	mut.CreatedAt = time.Now().UnixMilli()
	// 補上異動後的餘額，journal 重放靠這個做到冪等
	if account, ok := b.accounts[mut.Account]; ok {
		mut.BalanceAfter = account.Balance
	}
	if mut.To != "" {
		if to, ok := b.accounts[mut.To]; ok {
			mut.ToBalanceAfter = to.Balance
		}
	}
	if err := b.store.Record(ctx, mut, b.accounts); err != nil {
		b.logger.Error("persist failed",
			zap.Uint8("type", uint8(mut.Type)),
			zap.String("account", mut.Account),
			zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrStoreWriteFailed, err)
	}
	return nil
}

// randomDigits 產生固定位數的隨機數字字串
// leadingZero 為 false 時首位限定 1-9，確保字串長度等於位數
func randomDigits(n int, leadingZero bool) string {
	digits := make([]byte, n)
	for i := range digits {
		if i == 0 && !leadingZero {
			digits[i] = byte('1') + byte(rand.Intn(9))
			continue
		}
		digits[i] = byte('0') + byte(rand.Intn(10))
	}
	return string(digits)
}
