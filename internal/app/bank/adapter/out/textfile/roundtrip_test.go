package textfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
)

// TestBankRestartRoundTrip 跑過一串操作後「重啟」(用同一個快照重建 Bank)，
// 註冊表必須與重啟前完全一致：同樣的 ID、密碼、餘額
func TestBankRestartRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	ctx := context.Background()

	store, err := NewStore(path, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	bank, err := usecase.NewBank(ctx, store, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	a, err := bank.CreateAccount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := bank.CreateAccount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := bank.Deposit(ctx, a, 100); err != nil {
		t.Fatal(err)
	}
	if err := bank.Deposit(ctx, b, 50); err != nil {
		t.Fatal(err)
	}
	if err := bank.Transfer(ctx, a, b.ID, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := bank.TopUpPhone(ctx, a, "08123456", 20); err != nil {
		t.Fatal(err)
	}

	// 重啟：同一路徑重建 store 與 Bank
	store2, err := NewStore(path, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	bank2, err := usecase.NewBank(ctx, store2, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	// 登入 (含密碼比對) 應照常成功，餘額與重啟前一致
	a2, err := bank2.Login(ctx, a.ID, a.Credential)
	if err != nil {
		t.Fatal(err)
	}
	if bank2.Balance(a2) != 50 {
		t.Fatalf("a=%v want=50 after restart", bank2.Balance(a2))
	}
	b2, err := bank2.Login(ctx, b.ID, b.Credential)
	if err != nil {
		t.Fatal(err)
	}
	if bank2.Balance(b2) != 80 {
		t.Fatalf("b=%v want=80 after restart", bank2.Balance(b2))
	}
	if bank2.Count() != 2 {
		t.Fatalf("count=%d want=2", bank2.Count())
	}

	// 刪除後再重啟，帳戶必須真的消失
	if err := bank2.DeleteAccount(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	store3, err := NewStore(path, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	bank3, err := usecase.NewBank(ctx, store3, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bank3.Login(ctx, a.ID, a.Credential); err == nil {
		t.Fatal("login should fail after delete + restart")
	}
	if bank3.Count() != 1 {
		t.Fatalf("count=%d want=1", bank3.Count())
	}
}
