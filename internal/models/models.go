package models

import "time"

type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Hash      string    `db:"hash" json:"-"`
	Cash      int64     `db:"cash" json:"cash"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one ledger row. Shares is positive for a buy and negative
// for a sell.
type Transaction struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Symbol        string    `db:"symbol" json:"symbol"`
	Shares        int64     `db:"shares" json:"shares"`
	PricePerShare int64     `db:"price_per_share" json:"price_per_share"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (t Transaction) IsBuy() bool {
	return t.Shares > 0
}

type Holding struct {
	Symbol string `db:"symbol" json:"symbol"`
	Shares int64  `db:"shares" json:"shares"`
}
