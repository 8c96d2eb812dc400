package signing

import (
	"context"
	"sync"

	"github/chapool/go-signer/internal/signing/request"
)

// Presentation is whatever was last shown for a request
type Presentation struct {
	Ledger   *request.LedgerPresentation   `json:"ledger,omitempty"`
	Qr       *request.QrPresentation       `json:"qr,omitempty"`
	Internal *request.InternalPresentation `json:"internal,omitempty"`
}

// Inbox is a Presenter that keeps presentations until their request settles,
// so HTTP clients can poll for them
type Inbox struct {
	mu    sync.RWMutex
	items map[string]Presentation
}

func NewInbox() *Inbox {
	return &Inbox{
		items: make(map[string]Presentation),
	}
}

func (i *Inbox) PresentLedger(_ context.Context, presentation request.LedgerPresentation) error {
	i.put(presentation.LedgerID, Presentation{Ledger: &presentation})
	return nil
}

func (i *Inbox) PresentQr(_ context.Context, presentation request.QrPresentation) error {
	i.put(presentation.QrID, Presentation{Qr: &presentation})
	return nil
}

func (i *Inbox) PresentInternal(_ context.Context, presentation request.InternalPresentation) error {
	i.put(presentation.ID, Presentation{Internal: &presentation})
	return nil
}

// Get returns the presentation of request id
func (i *Inbox) Get(id string) (Presentation, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	p, ok := i.items[id]
	return p, ok
}

// Forget drops the presentation of a settled request
func (i *Inbox) Forget(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.items, id)
}

func (i *Inbox) put(id string, p Presentation) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.items[id] = p
}
