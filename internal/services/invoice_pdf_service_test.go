package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"billing-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	mu   sync.Mutex
	got  map[string]int
	done chan struct{}
}

func (f *fakeArchive) PutInvoice(ctx context.Context, number string, pdf []byte) (string, error) {
	f.mu.Lock()
	f.got[number] = len(pdf)
	f.mu.Unlock()
	close(f.done)
	return "key/" + number, nil
}

func TestRenderInvoice(t *testing.T) {
	env := newTestEnv(t)
	p := env.addProduct(t, "Ashwagandha Capsules", "100", "10", "12", 5)
	req := cart(models.CartItem{ProductID: p.ID, Quantity: 2})
	req.Customer = &models.CustomerSnapshot{Name: "Rina Das", Address: "12 Lake Road", City: "Kolkata"}
	bill, err := env.billing.CreateBill(env.ctx, req, env.settings, 1)
	require.NoError(t, err)

	env.settings.GSTBank = models.BankDetails{BankName: "SBI", AccountNumber: "1234567890", IFSC: "SBIN0000001"}
	env.settings.InvoiceNote = "Goods once sold will not be taken back."

	svc := NewInvoicePDFService(nil)
	pdf, err := svc.Render(bill, env.settings)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	bill.IsGSTBill = false
	pdf, err = svc.Render(bill, env.settings)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestArchiveAsync(t *testing.T) {
	archive := &fakeArchive{got: map[string]int{}, done: make(chan struct{})}
	svc := NewInvoicePDFService(archive)
	svc.ArchiveAsync("NH/0001/25-26", []byte("%PDF-1.3"))

	select {
	case <-archive.done:
	case <-time.After(2 * time.Second):
		t.Fatal("archive upload did not run")
	}
	archive.mu.Lock()
	defer archive.mu.Unlock()
	assert.Equal(t, 8, archive.got["NH/0001/25-26"])
}

func TestInvoiceFileName(t *testing.T) {
	assert.Equal(t, "invoice_NH_0052_25-26.pdf", FileName("NH/0052/25-26"))
}
