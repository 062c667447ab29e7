package domain

import "github.com/google/uuid"

// MutationType 異動類型
// 為了節省 journal 空間，使用 uint8
type MutationType uint8

const (
	// 建立帳戶
	MutationTypeCreate MutationType = 1
	// 存款
	MutationTypeDeposit MutationType = 2
	// 提款
	MutationTypeWithdraw MutationType = 3
	// 電話儲值 (對餘額的效果等同提款)
	MutationTypeTopUp MutationType = 4
	// 轉帳
	MutationTypeTransfer MutationType = 5
	// 刪除帳戶
	MutationTypeDelete MutationType = 6
)

// Mutation 一筆已成功套用的註冊表異動
// journal backend 以此為重放 (replay) 的單位；其他 backend 可以忽略內容，
// 只把它當成「該持久化了」的訊號。
type Mutation struct {
	// RefID: 異動追蹤號，重放時用來去重
	RefID uuid.UUID `json:"ref_id"`
	// Account: 主要帳戶 ID (Create/Delete/存提款的對象、轉帳的來源)
	Account string `json:"account"`
	// To: 轉帳目的帳戶 ID，其餘類型為空
	To string `json:"to,omitempty"`
	// Amount: 金額 (Create/Delete 為 0)
	Amount float64 `json:"amount,omitempty"`
	// BalanceAfter: 異動後主要帳戶的餘額 (Delete 不使用)
	// 重放時以「指定結果」方式套用，同一筆記錄不管套幾次結果都一樣，
	// 已被 compaction 折進快照的記錄重放到快照上也無害
	BalanceAfter float64 `json:"balance_after"`
	// ToBalanceAfter: 異動後目的帳戶的餘額 (僅轉帳)
	ToBalanceAfter float64 `json:"to_balance_after,omitempty"`
	// Phone: 電話儲值的號碼，其餘類型為空
	Phone string `json:"phone,omitempty"`
	// Credential: 建立帳戶時的密碼，重放時重建帳戶用
	Credential string `json:"credential,omitempty"`
	// CreatedAt: 異動時間 (Unix milli)
	CreatedAt int64 `json:"created_at"`
	// Type: 放最後面，利用 Padding 空間
	Type MutationType `json:"type"`
}
