package signing

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-signer/internal/signing/request"
	"github/chapool/go-signer/internal/signing/signer"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrClosed            = errors.New("signing service is closed")
)

// Presenter shows pending requests to whoever has to act on them
type Presenter interface {
	signer.LedgerPresenter
	signer.QrPresenter
	signer.InternalPresenter
}

// Broadcaster submits an assembled transaction to its chain and returns the
// hash reported by the node. An empty hash keeps the locally computed one.
type Broadcaster interface {
	Broadcast(ctx context.Context, req *request.TransactionRequest, signed []byte) (string, error)
}

// forgetter is implemented by presenters that keep state per request
type forgetter interface {
	Forget(id string)
}

func validateSubmission(sub request.Submission) error {
	switch {
	case sub.Chain == "":
		return errors.Wrap(ErrInvalidSubmission, "chain is required")
	case !sub.ChainType.Valid():
		return errors.Wrapf(ErrInvalidSubmission, "unknown chain type %q", sub.ChainType)
	case sub.Address == "":
		return errors.Wrap(ErrInvalidSubmission, "address is required")
	case len(sub.Payload) == 0:
		return errors.Wrap(ErrInvalidSubmission, "payload is required")
	}

	return nil
}
