package domain

import "errors"

var (
	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = errors.New("amount must be more than 0")

	// ErrInvalidPhoneNumber 電話號碼格式錯誤 (必須全為數字且至少 8 碼)
	ErrInvalidPhoneNumber = errors.New("phone number must be valid")

	// ErrInsufficientBalance 餘額不足
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAuthenticationFailed 帳號不存在或密碼錯誤 (不區分兩者，避免洩漏帳號存在與否)
	ErrAuthenticationFailed = errors.New("invalid account id or credential")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrSelfTransfer 不允許轉帳給自己
	ErrSelfTransfer = errors.New("cannot transfer to the same account")

	// ErrStoreWriteFailed 持久化寫入失敗
	ErrStoreWriteFailed = errors.New("store write failed")
)
