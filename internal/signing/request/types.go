package request

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainType identifies the payload family of a request
type ChainType string

const (
	ChainTypeSubstrate ChainType = "substrate"
	ChainTypeEthereum  ChainType = "ethereum"
)

// Valid reports whether the chain type is one the codec understands
func (c ChainType) Valid() bool {
	return c == ChainTypeSubstrate || c == ChainTypeEthereum
}

// ExtrinsicTypeSignRaw marks a request whose payload is a raw message rather
// than a transaction
const ExtrinsicTypeSignRaw = "signRaw"

// Status is the lifecycle state of a TransactionRequest.
// Every status except StatusPending is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// Terminal reports whether no further transition is allowed
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Backend is the signer backend variant chosen for an account
type Backend string

const (
	BackendLocal      Backend = "local"
	BackendHardware   Backend = "hardware"
	BackendExternalQr Backend = "external_qr"
	BackendInternal   Backend = "internal"
	BackendReadOnly   Backend = "read_only"
)

// Error is a single entry of TransactionRequest.Errors
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// TransactionRequest is owned by the registry until it reaches a terminal status
type TransactionRequest struct {
	ID                string          `json:"id"`
	Chain             string          `json:"chain"`
	ChainType         ChainType       `json:"chainType"`
	Address           string          `json:"address"`
	Payload           json.RawMessage `json:"payload"`
	Status            Status          `json:"status"`
	Backend           Backend         `json:"backend,omitempty"`
	ExtrinsicHash     string          `json:"extrinsicHash,omitempty"`
	ExtrinsicType     string          `json:"extrinsicType"`
	SignedTransaction hexutil.Bytes   `json:"signedTransaction,omitempty"`
	Transaction       json.RawMessage `json:"transaction,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	Errors            []Error         `json:"errors"`
}

// IsRawMessage reports whether req asks for a message signature
func (r *TransactionRequest) IsRawMessage() bool {
	return r.ExtrinsicType == ExtrinsicTypeSignRaw
}

// Clone returns a deep copy safe to hand out of the registry
func (r *TransactionRequest) Clone() *TransactionRequest {
	if r == nil {
		return nil
	}

	c := *r
	c.Payload = append(json.RawMessage(nil), r.Payload...)
	c.SignedTransaction = append(hexutil.Bytes(nil), r.SignedTransaction...)
	c.Transaction = append(json.RawMessage(nil), r.Transaction...)
	c.Errors = make([]Error, len(r.Errors))
	copy(c.Errors, r.Errors)

	return &c
}

// Submission is the inbound description of a transaction to sign
type Submission struct {
	Chain         string          `json:"chain"`
	ChainType     ChainType       `json:"chainType"`
	Address       string          `json:"address"`
	Payload       json.RawMessage `json:"payload"`
	ExtrinsicType string          `json:"extrinsicType"`
}

// AccountProfile describes what the signing account is capable of
type AccountProfile struct {
	Address      string `json:"address"`
	IsReadOnly   bool   `json:"isReadOnly"`
	IsHardware   bool   `json:"isHardware"`
	HardwareType string `json:"hardwareType,omitempty"`
	IsExternal   bool   `json:"isExternal"`
	IsMultisig   bool   `json:"isMultisig"`
	IsProxied    bool   `json:"isProxied"`
	IsInjected   bool   `json:"isInjected"`

	// BIP44 offsets of a hardware account
	AccountOffset uint32 `json:"accountOffset,omitempty"`
	AddressOffset uint32 `json:"addressOffset,omitempty"`
}

// SignerResult is returned once per request by a signer backend
type SignerResult struct {
	ID        uint64        `json:"id"`
	Signature hexutil.Bytes `json:"signature"`
}

// LedgerPresentation is handed to the UI collaborator for hardware flows
type LedgerPresentation struct {
	LedgerPayload string `json:"ledgerPayload"`
	LedgerID      string `json:"ledgerId"`
}

// QrPresentation is handed to the UI collaborator for QR flows
type QrPresentation struct {
	QrPayload  string `json:"qrPayload"`
	QrID       string `json:"qrId"`
	QrAddress  string `json:"qrAddress"`
	IsEthereum bool   `json:"isEthereum"`
	IsQrHashed bool   `json:"isQrHashed"`
}

// InternalPresentation is handed to the extension's own confirmation flow
type InternalPresentation struct {
	ID            string          `json:"id"`
	Address       string          `json:"address"`
	Chain         string          `json:"chain"`
	ChainType     ChainType       `json:"chainType"`
	ExtrinsicType string          `json:"extrinsicType"`
	Payload       json.RawMessage `json:"payload"`
}
