package core

import (
	"strings"
	"time"
)

type (
	// ExpenseRecord is one persisted expense row. RowID is assigned by the
	// row store on append and is immutable afterwards.
	ExpenseRecord struct {
		RowID       string
		UserID      string
		Amount      Money
		Currency    string
		Category    Category
		Description string
		Tags        []string
		Notes       string
		Timestamp   time.Time
	}

	// FieldPatch carries the subset of mutable fields for an update.
	// Nil pointers mean "leave unchanged". RowID and UserID are never
	// patchable.
	FieldPatch struct {
		Amount      *Money
		Currency    *string
		Category    *Category
		Description *string
		Tags        *[]string
		Notes       *string
		Timestamp   *time.Time
	}
)

func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if e.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

// Apply returns a copy of the record with the patch applied.
func (e ExpenseRecord) Apply(p FieldPatch) ExpenseRecord {
	out := e
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.Currency != nil {
		out.Currency = *p.Currency
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Timestamp != nil {
		out.Timestamp = *p.Timestamp
	}
	return out
}

// Empty reports whether the patch changes nothing.
func (p FieldPatch) Empty() bool {
	return p.Amount == nil && p.Currency == nil && p.Category == nil &&
		p.Description == nil && p.Tags == nil && p.Notes == nil && p.Timestamp == nil
}
