package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-ledger/internal/app/bank/usecase"
)

// Menu 是互動式選單 (Driving Adapter)
// 只負責輸入輸出與呼叫 Bank 的公開操作，錯誤原樣轉述給使用者，
// 不含任何業務規則
type Menu struct {
	bank *usecase.Bank
	in   *bufio.Reader
	out  io.Writer
}

func NewMenu(bank *usecase.Bank, in *bufio.Reader, out io.Writer) *Menu {
	return &Menu{bank: bank, in: in, out: out}
}

// Run 主選單迴圈，直到使用者選擇離開
func (m *Menu) Run(ctx context.Context) {
	for {
		fmt.Fprintln(m.out, "\n1. Open Account  2. Login  3. Exit")
		fmt.Fprint(m.out, "Pick an option: ")
		switch m.readLine() {
		case "1":
			m.openAccount(ctx)
		case "2":
			if account := m.login(ctx); account != nil {
				m.session(ctx, account)
			}
		case "3":
			fmt.Fprintln(m.out, "Thank you for banking with us!")
			return
		default:
			fmt.Fprintln(m.out, "Please choose a number from the menu.")
		}
	}
}

// openAccount 建立帳戶並顯示帳號密碼
// 密碼之後無法再查詢，只在這裡顯示一次
func (m *Menu) openAccount(ctx context.Context) {
	account, err := m.bank.CreateAccount(ctx)
	if err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return
	}
	fmt.Fprintf(m.out, "Account created. ID: %s  Passcode: %s\n", account.ID, account.Credential)
	fmt.Fprintln(m.out, "Write these down now - the passcode cannot be recovered later.")
}

func (m *Menu) login(ctx context.Context) *domain.Account {
	fmt.Fprint(m.out, "Account ID: ")
	id := m.readLine()
	fmt.Fprint(m.out, "Passcode: ")
	credential := m.readLine()

	account, err := m.bank.Login(ctx, id, credential)
	if err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return nil
	}
	fmt.Fprintf(m.out, "Welcome, account %s.\n", account.ID)
	return account
}

// session 登入後的操作選單
func (m *Menu) session(ctx context.Context, account *domain.Account) {
	for {
		fmt.Fprintln(m.out, "\n1. Deposit  2. Withdraw  3. Top-up Phone  4. Check Balance  5. Transfer  6. Delete Account  7. Logout")
		fmt.Fprint(m.out, "Pick an option: ")
		switch m.readLine() {
		case "1":
			m.deposit(ctx, account)
		case "2":
			m.withdraw(ctx, account)
		case "3":
			m.topUpPhone(ctx, account)
		case "4":
			fmt.Fprintf(m.out, "Avail Bal: Nu.%v\n", m.bank.Balance(account))
		case "5":
			m.transfer(ctx, account)
		case "6":
			if m.deleteAccount(ctx, account) {
				return
			}
		case "7":
			return
		default:
			fmt.Fprintln(m.out, "Please choose a number from the menu.")
		}
	}
}

func (m *Menu) deposit(ctx context.Context, account *domain.Account) {
	amount, ok := m.readAmount("Enter amount to deposit: ")
	if !ok {
		return
	}
	if err := m.bank.Deposit(ctx, account, amount); err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return
	}
	fmt.Fprintf(m.out, "Nu. %v is credited to your account\n", amount)
}

func (m *Menu) withdraw(ctx context.Context, account *domain.Account) {
	amount, ok := m.readAmount("Enter amount to withdraw: ")
	if !ok {
		return
	}
	if err := m.bank.Withdraw(ctx, account, amount); err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return
	}
	fmt.Fprintf(m.out, "Nu. %v is debited from your account\n", amount)
}

func (m *Menu) topUpPhone(ctx context.Context, account *domain.Account) {
	fmt.Fprint(m.out, "Enter phone number: ")
	phone := m.readLine()
	amount, ok := m.readAmount("Enter top-up amount: ")
	if !ok {
		return
	}
	confirmation, err := m.bank.TopUpPhone(ctx, account, phone, amount)
	if err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return
	}
	fmt.Fprintln(m.out, confirmation)
}

func (m *Menu) transfer(ctx context.Context, account *domain.Account) {
	fmt.Fprint(m.out, "Enter destination account ID: ")
	toID := m.readLine()
	amount, ok := m.readAmount("Enter amount to transfer: ")
	if !ok {
		return
	}
	if err := m.bank.Transfer(ctx, account, toID, amount); err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return
	}
	fmt.Fprintf(m.out, "Nu. %v transferred to account %s\n", amount, toID)
}

// deleteAccount 刪除目前帳戶，成功時回傳 true 讓 session 結束
func (m *Menu) deleteAccount(ctx context.Context, account *domain.Account) bool {
	fmt.Fprint(m.out, "Delete this account? (yes/no): ")
	if m.readLine() != "yes" {
		return false
	}
	if err := m.bank.DeleteAccount(ctx, account.ID); err != nil {
		fmt.Fprintln(m.out, "Error:", err)
		return false
	}
	fmt.Fprintln(m.out, "Account deleted.")
	return true
}

func (m *Menu) readLine() string {
	line, _ := m.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// readAmount 讀一個金額；解析失敗回報錯誤並放棄這次操作 (金額範圍檢核交給領域層)
func (m *Menu) readAmount(prompt string) (float64, bool) {
	fmt.Fprint(m.out, prompt)
	raw := m.readLine()
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Fprintf(m.out, "Error: %q is not a number\n", raw)
		return 0, false
	}
	return amount, true
}
