package textfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/pkg/logging"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.txt")
	store, err := NewStore(path, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return store, path
}

// TestLoadMissingFile 檔案不存在視為空註冊表，不是錯誤
func TestLoadMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	accounts, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 0 {
		t.Fatalf("want empty registry, got %d accounts", len(accounts))
	}
}

// TestSaveLoadRoundTrip 寫入再載入，ID/密碼/餘額必須完全一致
func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	accounts := map[string]*domain.Account{
		"10001": domain.NewAccount("10001", "1234", 250.5),
		"20002": domain.NewAccount("20002", "0042", 0),
	}
	if err := store.Record(ctx, &domain.Mutation{Type: domain.MutationTypeDeposit}, accounts); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d accounts, want 2", len(loaded))
	}
	for id, want := range accounts {
		got, ok := loaded[id]
		if !ok {
			t.Fatalf("account %s missing after reload", id)
		}
		if got.Credential != want.Credential || got.Balance != want.Balance {
			t.Fatalf("account %s: got=%+v want=%+v", id, got, want)
		}
	}
}

// TestSnapshotFormat 一行一帳戶，欄位順序 id,credential,balance
func TestSnapshotFormat(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	accounts := map[string]*domain.Account{
		"10001": domain.NewAccount("10001", "1234", 99.5),
	}
	if err := store.Record(ctx, nil, accounts); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(raw))
	if line != "10001,1234,99.5" {
		t.Fatalf("snapshot line=%q", line)
	}
}

// TestMalformedLinesSkipped 欄位數不對或餘額壞掉的行跳過，其餘照常載入
func TestMalformedLinesSkipped(t *testing.T) {
	store, path := newTestStore(t)

	content := strings.Join([]string{
		"10001,1234,100",
		"garbage line without delimiter",
		"20002,0042",          // 欄位不足
		"30003,7777,not-a-number", // 餘額解析失敗
		"40004,5555,25",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	accounts, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("loaded %d accounts, want 2 (malformed skipped)", len(accounts))
	}
	if accounts["10001"].Balance != 100 || accounts["40004"].Balance != 25 {
		t.Fatalf("unexpected balances: %+v", accounts)
	}
}

// TestFailedWriteLeavesNoTmp 寫入失敗時暫存檔要清掉，不殘留 .tmp
func TestFailedWriteLeavesNoTmp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.txt")
	store, err := NewStore(path, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	// 快照路徑被目錄佔住，rename 會失敗
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	accounts := map[string]*domain.Account{
		"10001": domain.NewAccount("10001", "1234", 100),
	}
	if err := store.Record(context.Background(), nil, accounts); err == nil {
		t.Fatal("want error when snapshot path is a directory")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind after failed write: %v", err)
	}
}

// TestSuccessfulWriteLeavesNoTmp 正常寫入後也不該留下 .tmp
func TestSuccessfulWriteLeavesNoTmp(t *testing.T) {
	store, path := newTestStore(t)

	accounts := map[string]*domain.Account{
		"10001": domain.NewAccount("10001", "1234", 100),
	}
	if err := store.Record(context.Background(), nil, accounts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind after write: %v", err)
	}
}

// TestRewriteShrinks 每次 Record 都是整檔重寫：刪掉的帳戶不會殘留
func TestRewriteShrinks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	full := map[string]*domain.Account{
		"10001": domain.NewAccount("10001", "1234", 100),
		"20002": domain.NewAccount("20002", "5678", 50),
	}
	if err := store.Record(ctx, nil, full); err != nil {
		t.Fatal(err)
	}

	delete(full, "20002")
	if err := store.Record(ctx, nil, full); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d accounts, want 1", len(loaded))
	}
	if _, ok := loaded["20002"]; ok {
		t.Fatal("deleted account still present after rewrite")
	}
}
