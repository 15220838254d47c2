package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Item lifecycle statuses. Items submitted through the API skip the manual
// authentication steps and land directly in StatusVaulted.
const (
	StatusPending        = "pending"
	StatusAuthenticating = "authenticating"
	StatusAuthenticated  = "authenticated"
	StatusVaulted        = "vaulted"
	StatusRejected       = "rejected"
	StatusTrading        = "trading"
)

// Transaction kinds.
const (
	TxTrade    = "trade"
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
	TxSubmit   = "submit"
	TxRedeem   = "redeem"
)

// Attrs is the schema-less attribute blob carried by inventory items and
// transaction detail payloads. Stored as JSONB.
type Attrs map[string]any

// Value returns the JSON text as a string; lib/pq would encode a []byte as
// bytea, which jsonb columns reject.
func (a Attrs) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

func (a *Attrs) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("attrs: unsupported scan source")
	}
}

type Wallet struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type InventoryItem struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Name            string     `db:"name" json:"name"`
	ImageURL        *string    `db:"image_url" json:"image_url,omitempty"`
	Status          string     `db:"status" json:"status"`
	CollectibleType string     `db:"collectible_type" json:"collectible_type"`
	ExternalID      *string    `db:"external_id" json:"external_id,omitempty"`
	ExternalAPI     *string    `db:"external_api" json:"external_api,omitempty"`
	Attrs           Attrs      `db:"attrs" json:"attrs,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	SubmittedAt     time.Time  `db:"submitted_at" json:"submitted_at"`
	AuthenticatedAt *time.Time `db:"authenticated_at" json:"authenticated_at,omitempty"`
	VaultedAt       *time.Time `db:"vaulted_at" json:"vaulted_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Transaction rows are append-only; balance history can be rebuilt by
// replaying amounts against the balance_after checkpoints.
type Transaction struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Type         string    `db:"type" json:"type"`
	Description  string    `db:"description" json:"description"`
	Amount       int64     `db:"amount" json:"amount"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	Detail       Attrs     `db:"detail" json:"detail,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Card struct {
	ID             string     `db:"id" json:"id"`
	ExternalID     string     `db:"external_id" json:"external_id"`
	Name           string     `db:"name" json:"name"`
	SetName        *string    `db:"set_name" json:"set_name,omitempty"`
	SetID          *string    `db:"set_id" json:"set_id,omitempty"`
	Number         *string    `db:"number" json:"number,omitempty"`
	Rarity         *string    `db:"rarity" json:"rarity,omitempty"`
	Supertype      *string    `db:"supertype" json:"supertype,omitempty"`
	SubtypesJSON   *string    `db:"subtypes" json:"-"`
	ImageSmall     *string    `db:"image_small" json:"image_small,omitempty"`
	ImageLarge     *string    `db:"image_large" json:"image_large,omitempty"`
	Language       string     `db:"language" json:"language"`
	NameJP         *string    `db:"name_jp" json:"name_jp,omitempty"`
	MarketPrice    *int64     `db:"market_price" json:"market_price,omitempty"`
	PriceSource    *string    `db:"price_source" json:"price_source,omitempty"`
	PriceUpdatedAt *time.Time `db:"price_updated_at" json:"price_updated_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Subtypes decodes the stored subtype list, tolerating malformed rows.
func (c Card) Subtypes() []string {
	if c.SubtypesJSON == nil {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(*c.SubtypesJSON), &out); err != nil {
		return nil
	}
	return out
}
