// Package quote owns the mutable draft being edited. Every mutation goes
// through the Manager, which serializes them and synchronously persists
// the draft before returning.
package quote

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hazemadel/quotedesk-backend/internal/catalog"
	"github.com/hazemadel/quotedesk-backend/internal/pricing"
	"github.com/hazemadel/quotedesk-backend/internal/subsidy"
	"github.com/hazemadel/quotedesk-backend/pkg/errors"
	"github.com/hazemadel/quotedesk-backend/pkg/types"
)

// DraftStore is the persistence dependency of the manager. A failed write
// is reported to the caller; the in-memory mutation stands either way.
type DraftStore interface {
	SaveDraft(ctx context.Context, quote types.Quote) error
	ClearDraft(ctx context.Context) error
}

// Manager holds the working quote. Mutations are serialized with a mutex
// so one mutation, including its persistence side effect, completes before
// the next is accepted.
type Manager struct {
	mu     sync.Mutex
	table  *subsidy.Table
	drafts DraftStore
	quote  types.Quote
}

func NewManager(table *subsidy.Table, drafts DraftStore) (*Manager, error) {
	if table == nil {
		return nil, errors.New(errors.CodeInternal, "subsidy table is required")
	}
	if drafts == nil {
		return nil, errors.New(errors.CodeInternal, "draft store is required")
	}
	return &Manager{table: table, drafts: drafts}, nil
}

// Restore rehydrates the draft at startup without triggering a persist.
func (m *Manager) Restore(quote types.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = cloneQuote(quote)
}

// AddLine appends a product to the quote. If a line with the same product
// id already exists its quantity is incremented instead; the quote never
// holds duplicate lines for one product.
func (m *Manager) AddLine(ctx context.Context, product catalog.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.quote.Items {
		if m.quote.Items[i].ProductID == product.ID {
			m.quote.Items[i].Quantity += quantity
			return m.persist(ctx)
		}
	}

	m.quote.Items = append(m.quote.Items, types.QuoteLineItem{
		ProductID:         product.ID,
		Code:              product.Code,
		Name:              product.Name,
		Category:          product.Category,
		Cost:              product.Cost,
		Price:             product.Price,
		Margin:            product.Margin,
		Quantity:          quantity,
		SubsidyPercentage: decimal.Zero,
		SubsidyAmount:     decimal.Zero,
	})
	return m.persist(ctx)
}

// RemoveLine deletes a line by product id. Removing an absent line is not
// an error.
func (m *Manager) RemoveLine(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.removeLocked(productID) {
		return nil
	}
	return m.persist(ctx)
}

// SetQuantity updates a line's quantity in place. A quantity of zero or
// below removes the line.
func (m *Manager) SetQuantity(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity <= 0 {
		if !m.removeLocked(productID) {
			return nil
		}
		return m.persist(ctx)
	}

	for i := range m.quote.Items {
		if m.quote.Items[i].ProductID == productID {
			m.quote.Items[i].Quantity = quantity
			return m.persist(ctx)
		}
	}
	return errors.New(errors.CodeNotFound, "line item not found")
}

// SetSubsidyPercentage clamps the percentage to [0,100] and recomputes the
// stored per-unit subsidy amount. This is the only place the amount is
// recomputed. Lines whose code has no subsidy record are left untouched.
func (m *Manager) SetSubsidyPercentage(ctx context.Context, productID string, percentage decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.quote.Items {
		if m.quote.Items[i].ProductID != productID {
			continue
		}
		if !m.table.IsSubsidized(m.quote.Items[i].Code) {
			return nil
		}
		clamped := subsidy.ClampPercentage(percentage)
		m.quote.Items[i].SubsidyPercentage = clamped
		m.quote.Items[i].SubsidyAmount = m.table.AmountFor(m.quote.Items[i].Code, clamped)
		return m.persist(ctx)
	}
	return errors.New(errors.CodeNotFound, "line item not found")
}

// ApplyMaxSubsidy sets every subsidizable line to the full subsidy.
func (m *Manager) ApplyMaxSubsidy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	full := decimal.NewFromInt(100)
	changed := false
	for i := range m.quote.Items {
		if !m.table.IsSubsidized(m.quote.Items[i].Code) {
			continue
		}
		m.quote.Items[i].SubsidyPercentage = full
		m.quote.Items[i].SubsidyAmount = m.table.AmountFor(m.quote.Items[i].Code, full)
		changed = true
	}
	if !changed {
		return nil
	}
	return m.persist(ctx)
}

// ClearSubsidies zeroes the subsidy on every line.
func (m *Manager) ClearSubsidies(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	for i := range m.quote.Items {
		if m.quote.Items[i].SubsidyPercentage.IsZero() && m.quote.Items[i].SubsidyAmount.IsZero() {
			continue
		}
		m.quote.Items[i].SubsidyPercentage = decimal.Zero
		m.quote.Items[i].SubsidyAmount = decimal.Zero
		changed = true
	}
	if !changed {
		return nil
	}
	return m.persist(ctx)
}

// Rename sets the quote's label.
func (m *Manager) Rename(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote.Name = name
	return m.persist(ctx)
}

// SetCustomer sets the quote's customer label.
func (m *Manager) SetCustomer(ctx context.Context, customer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote.Customer = customer
	return m.persist(ctx)
}

// Clear empties the draft and removes it from storage.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = types.Quote{}
	return m.drafts.ClearDraft(ctx)
}

// Load replaces the draft with a saved quote's content and persists it.
func (m *Manager) Load(ctx context.Context, quote types.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quote = cloneQuote(quote)
	return m.persist(ctx)
}

// Snapshot returns a deep copy of the current draft.
func (m *Manager) Snapshot() types.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneQuote(m.quote)
}

// Stats recomputes the derived figures for the current draft.
func (m *Manager) Stats() types.QuoteStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pricing.QuoteStats(m.quote.Items)
}

// SubsidySummary aggregates the subsidized lines of the current draft.
func (m *Manager) SubsidySummary() types.SubsidySummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return subsidy.QuoteSummary(m.quote.Items)
}

// QuantityOf reports the quantity of a line, zero when absent.
func (m *Manager) QuantityOf(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.quote.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Contains reports whether the draft holds a line for the product.
func (m *Manager) Contains(productID string) bool {
	return m.QuantityOf(productID) > 0
}

func (m *Manager) removeLocked(productID string) bool {
	for i := range m.quote.Items {
		if m.quote.Items[i].ProductID == productID {
			m.quote.Items = append(m.quote.Items[:i], m.quote.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) persist(ctx context.Context) error {
	return m.drafts.SaveDraft(ctx, cloneQuote(m.quote))
}

func cloneQuote(quote types.Quote) types.Quote {
	out := quote
	if quote.Items != nil {
		out.Items = make([]types.QuoteLineItem, len(quote.Items))
		copy(out.Items, quote.Items)
	}
	return out
}
