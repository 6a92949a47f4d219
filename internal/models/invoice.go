package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FeeItem is one billed line on an invoice.
type FeeItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FeeItems is stored as a jsonb column.
type FeeItems []FeeItem

// Value implements driver.Valuer.
func (f FeeItems) Value() (driver.Value, error) {
	if f == nil {
		f = FeeItems{}
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *FeeItems) Scan(src interface{}) error {
	if src == nil {
		*f = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("fee items: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, f)
}

// Sum returns the total of all item amounts.
func (f FeeItems) Sum() float64 {
	var total float64
	for _, item := range f {
		total += item.Amount
	}
	return total
}

// Invoice is a tuition bill for a student. Total must always equal the sum
// of item amounts; is_paid transitions false→true exactly once via the pay
// operation and never back.
type Invoice struct {
	ID        string   `db:"id" json:"id"`
	StudentID string   `db:"student_id" json:"studentId"`
	Month     int      `db:"month" json:"month"`
	Year      int      `db:"year" json:"year"`
	Items     FeeItems `db:"items" json:"items"`
	Total     float64  `db:"total" json:"total"`
	IsPaid    bool     `db:"is_paid" json:"isPaid"`
}

// Validate enforces the derived-total invariant.
func (i Invoice) Validate() error {
	const epsilon = 1e-6
	sum := i.Items.Sum()
	if diff := i.Total - sum; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("invoice total %.2f does not match item sum %.2f", i.Total, sum)
	}
	return nil
}
