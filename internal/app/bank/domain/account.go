package domain

import "fmt"

// 電話儲值的號碼規則：全數字且至少 MinPhoneDigits 碼
const MinPhoneDigits = 8

// Account 單一帳戶
//
// 欄位:
//
//	ID: 帳戶編號，建立後不可變
//	Credential: 登入密碼，建立後不可變 (不支援改密碼)
//	Balance: 餘額，任何操作後都必須 >= 0
type Account struct {
	ID         string  `json:"id"`
	Credential string  `json:"credential"`
	Balance    float64 `json:"balance"`
}

func NewAccount(id, credential string, balance float64) *Account {
	return &Account{
		ID:         id,
		Credential: credential,
		Balance:    balance,
	}
}

// Deposit 存款
// 金額必須 > 0，否則不改變任何狀態
func (a *Account) Deposit(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	a.Balance = a.Balance + amount
	return nil
}

// Withdraw 提款
// 金額必須 > 0 且不得超過餘額 (確保餘額永不為負)
func (a *Account) Withdraw(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if a.Balance < amount {
		return ErrInsufficientBalance
	}

	a.Balance = a.Balance - amount
	return nil
}

// TopUpPhone 電話儲值
// 先檢查電話號碼格式，再走 Withdraw 的檢核與扣款。
// 成功時回傳確認訊息 (純粹描述性，不會真的打到電信商)。
//
// 回傳:
//
//	string: 確認訊息，例如 "Phone 08123456 topped up with Nu.10"
//	error: 檢核錯誤 (電話格式 / 金額 / 餘額)
func (a *Account) TopUpPhone(phone string, amount float64) (string, error) {
	if !isAllDigits(phone) || len(phone) < MinPhoneDigits {
		return "", ErrInvalidPhoneNumber
	}

	if err := a.Withdraw(amount); err != nil {
		return "", err
	}
	return fmt.Sprintf("Phone %s topped up with Nu.%v", phone, amount), nil
}

// isAllDigits 檢查字串非空且全為 0-9
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
