package types

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/cryptocurrency/jsonx"
)

// Wallet is the only persistent entity of the ledger. PubKey and Name never change
// after creation; Balance is only moved by transfers.
type Wallet struct {
	PubKey  PublicKey
	Name    string
	Balance *uint256.Int
}

type walletJSON struct {
	PubKey  PublicKey   `json:"pub_key"`
	Name    string      `json:"name"`
	Balance json.Number `json:"balance"`
}

func NewWallet(pubKey PublicKey, name string, balance *uint256.Int) *Wallet {
	return &Wallet{
		PubKey:  pubKey,
		Name:    name,
		Balance: new(uint256.Int).Set(balance),
	}
}

// Clone returns a deep copy so callers never share the balance pointer.
func (w *Wallet) Clone() *Wallet {
	return NewWallet(w.PubKey, w.Name, w.balance())
}

// Increase credits amount to the wallet.
func (w *Wallet) Increase(amount *uint256.Int) {
	w.Balance = new(uint256.Int).Add(w.balance(), amount)
}

// Decrease debits amount from the wallet. The caller must have checked HasAtLeast.
func (w *Wallet) Decrease(amount *uint256.Int) {
	w.Balance = new(uint256.Int).Sub(w.balance(), amount)
}

func (w *Wallet) HasAtLeast(amount *uint256.Int) bool {
	return w.balance().Cmp(amount) >= 0
}

func (w *Wallet) balance() *uint256.Int {
	if w.Balance == nil {
		return uint256.NewInt(0)
	}
	return w.Balance
}

// MarshalJSON renders the balance as a plain JSON number of arbitrary width.
func (w Wallet) MarshalJSON() ([]byte, error) {
	return jsonx.Marshal(walletJSON{
		PubKey:  w.PubKey,
		Name:    w.Name,
		Balance: json.Number(w.balance().Dec()),
	})
}

func (w *Wallet) UnmarshalJSON(data []byte) error {
	var aux walletJSON
	if err := jsonx.Unmarshal(data, &aux); err != nil {
		return err
	}
	balance := uint256.NewInt(0)
	if aux.Balance != "" {
		parsed, err := uint256.FromDecimal(aux.Balance.String())
		if err != nil {
			return fmt.Errorf("invalid wallet balance %q: %w", aux.Balance, err)
		}
		balance = parsed
	}
	w.PubKey = aux.PubKey
	w.Name = aux.Name
	w.Balance = balance
	return nil
}

func (w *Wallet) String() string {
	return fmt.Sprintf("Wallet{pub_key: %s, name: %q, balance: %s}", w.PubKey, w.Name, w.balance().Dec())
}
