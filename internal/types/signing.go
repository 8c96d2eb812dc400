package types

import (
	"encoding/json"
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

var (
	chainTypeEnum []interface{}
	statusEnum    []interface{}
	backendEnum   []interface{}
)

func init() {
	chainTypeEnum = enumOf(`["substrate","ethereum"]`)
	statusEnum = enumOf(`["pending","rejected","failed","completed"]`)
	backendEnum = enumOf(`["local","hardware","external_qr","internal","read_only"]`)
}

func enumOf(schema string) []interface{} {
	var res []string
	if err := json.Unmarshal([]byte(schema), &res); err != nil {
		panic(err)
	}

	enum := make([]interface{}, 0, len(res))
	for _, v := range res {
		enum = append(enum, v)
	}
	return enum
}

// PostSignRequestPayload post sign request payload
//
// swagger:model postSignRequestPayload
type PostSignRequestPayload struct {

	// account
	Account *AccountProfile `json:"account,omitempty"`

	// Address of the signing account, hex for ethereum, SS58 for substrate
	// Example: 0x2c7536E3605D9C16a7a3D7b1898e529396a65c23
	// Required: true
	// Min Length: 1
	Address *string `json:"address"`

	// Name of a configured chain
	// Example: ethereum
	// Required: true
	// Min Length: 1
	Chain *string `json:"chain"`

	// chain type
	// Required: true
	// Enum: [substrate ethereum]
	ChainType *string `json:"chainType"`

	// Label shown to the account owner, e.g. balances.transfer
	ExtrinsicType string `json:"extrinsicType,omitempty"`

	// Unsigned ethereum transaction object or substrate signer payload
	// Required: true
	Payload json.RawMessage `json:"payload"`
}

// Validate validates this post sign request payload
func (m *PostSignRequestPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateAccount(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateAddress(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateChain(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateChainType(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validatePayload(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostSignRequestPayload) validatePayload(formats strfmt.Registry) error {

	if err := validate.Required("payload", "body", m.Payload); err != nil {
		return err
	}

	// an explicit null binds as the raw literal
	if string(m.Payload) == "null" {
		return errors.Required("payload", "body", nil)
	}

	return nil
}

func (m *PostSignRequestPayload) validateAccount(formats strfmt.Registry) error {
	if swag.IsZero(m.Account) { // not required
		return nil
	}

	if err := m.Account.Validate(formats); err != nil {
		if ve, ok := err.(*errors.Validation); ok {
			return ve.ValidateName("account")
		}
		return err
	}

	return nil
}

func (m *PostSignRequestPayload) validateAddress(formats strfmt.Registry) error {

	if err := validate.Required("address", "body", m.Address); err != nil {
		return err
	}

	if err := validate.MinLength("address", "body", *m.Address, 1); err != nil {
		return err
	}

	return nil
}

func (m *PostSignRequestPayload) validateChain(formats strfmt.Registry) error {

	if err := validate.Required("chain", "body", m.Chain); err != nil {
		return err
	}

	if err := validate.MinLength("chain", "body", *m.Chain, 1); err != nil {
		return err
	}

	return nil
}

func (m *PostSignRequestPayload) validateChainType(formats strfmt.Registry) error {

	if err := validate.Required("chainType", "body", m.ChainType); err != nil {
		return err
	}

	// value enum
	if err := validate.EnumCase("chainType", "body", *m.ChainType, chainTypeEnum, true); err != nil {
		return err
	}

	return nil
}

// MarshalBinary interface implementation
func (m *PostSignRequestPayload) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *PostSignRequestPayload) UnmarshalBinary(b []byte) error {
	var res PostSignRequestPayload
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// AccountProfile What the signing account is capable of
//
// swagger:model accountProfile
type AccountProfile struct {

	// BIP44 account offset of a hardware account
	// Minimum: 0
	// Maximum: 2147483647
	AccountOffset int64 `json:"accountOffset,omitempty"`

	// Must equal the address of the payload when set
	Address string `json:"address,omitempty"`

	// BIP44 address offset of a hardware account
	// Minimum: 0
	// Maximum: 2147483647
	AddressOffset int64 `json:"addressOffset,omitempty"`

	// hardware type
	HardwareType string `json:"hardwareType,omitempty"`

	// is external
	IsExternal bool `json:"isExternal,omitempty"`

	// is hardware
	IsHardware bool `json:"isHardware,omitempty"`

	// is injected
	IsInjected bool `json:"isInjected,omitempty"`

	// is multisig
	IsMultisig bool `json:"isMultisig,omitempty"`

	// is proxied
	IsProxied bool `json:"isProxied,omitempty"`

	// is read only
	IsReadOnly bool `json:"isReadOnly,omitempty"`
}

// Validate validates this account profile
func (m *AccountProfile) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validateOffset("accountOffset", m.AccountOffset); err != nil {
		res = append(res, err)
	}

	if err := validateOffset("addressOffset", m.AddressOffset); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func validateOffset(path string, value int64) error {
	if swag.IsZero(value) { // not required
		return nil
	}

	if err := validate.MinimumInt(path, "body", value, 0, false); err != nil {
		return err
	}

	if err := validate.MaximumInt(path, "body", value, 2147483647, false); err != nil {
		return err
	}

	return nil
}

// PostSignaturePayload post signature payload
//
// swagger:model postSignaturePayload
type PostSignaturePayload struct {

	// Hex encoded signature scanned from an external device or produced by the internal flow
	// Required: true
	// Pattern: ^0x([0-9a-fA-F]{2})+$
	Signature *string `json:"signature"`
}

// Validate validates this post signature payload
func (m *PostSignaturePayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateSignature(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostSignaturePayload) validateSignature(formats strfmt.Registry) error {

	if err := validate.Required("signature", "body", m.Signature); err != nil {
		return err
	}

	if err := validate.Pattern("signature", "body", *m.Signature, `^0x([0-9a-fA-F]{2})+$`); err != nil {
		return err
	}

	return nil
}

// PostCancelPayload post cancel payload
//
// swagger:model postCancelPayload
type PostCancelPayload struct {

	// Reason recorded on the rejected request
	// Max Length: 256
	Reason string `json:"reason,omitempty"`
}

// Validate validates this post cancel payload
func (m *PostCancelPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validateReason(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostCancelPayload) validateReason(formats strfmt.Registry) error {
	if swag.IsZero(m.Reason) { // not required
		return nil
	}

	if err := validate.MaxLength("reason", "body", m.Reason, 256); err != nil {
		return err
	}

	return nil
}

// SignRequest A sign request together with what is awaited from its owner
//
// swagger:model signRequest
type SignRequest struct {

	// address
	// Required: true
	Address *string `json:"address"`

	// backend
	// Enum: [local hardware external_qr internal read_only]
	Backend string `json:"backend,omitempty"`

	// chain
	// Required: true
	Chain *string `json:"chain"`

	// chain type
	// Required: true
	// Enum: [substrate ethereum]
	ChainType *string `json:"chainType"`

	// created at
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt"`

	// Every failure recorded on the request, oldest first
	// Required: true
	Errors []*SignRequestError `json:"errors"`

	// Hash of the signed transaction or extrinsic
	ExtrinsicHash string `json:"extrinsicHash,omitempty"`

	// extrinsic type
	ExtrinsicType string `json:"extrinsicType,omitempty"`

	// id
	// Required: true
	// Format: uuid
	ID *strfmt.UUID `json:"id"`

	// payload
	Payload json.RawMessage `json:"payload,omitempty"`

	// presentation
	Presentation *SignRequestPresentation `json:"presentation,omitempty"`

	// Hex encoded submittable transaction
	SignedTransaction string `json:"signedTransaction,omitempty"`

	// status
	// Required: true
	// Enum: [pending rejected failed completed]
	Status *string `json:"status"`

	// Assembled ethereum transaction with its split signature
	Transaction json.RawMessage `json:"transaction,omitempty"`

	// updated at
	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt"`

	// Localized text for the account owner once the request did not complete
	UserMessage string `json:"userMessage,omitempty"`
}

// Validate validates this sign request
func (m *SignRequest) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("address", "body", m.Address); err != nil {
		res = append(res, err)
	}

	if err := m.validateBackend(formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("chain", "body", m.Chain); err != nil {
		res = append(res, err)
	}

	if err := m.validateChainType(formats); err != nil {
		res = append(res, err)
	}

	if err := validateDateTime("createdAt", m.CreatedAt, formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateErrors(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateID(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validatePresentation(formats); err != nil {
		res = append(res, err)
	}

	if err := m.validateStatus(formats); err != nil {
		res = append(res, err)
	}

	if err := validateDateTime("updatedAt", m.UpdatedAt, formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *SignRequest) validateBackend(formats strfmt.Registry) error {
	if swag.IsZero(m.Backend) { // not required
		return nil
	}

	// value enum
	if err := validate.EnumCase("backend", "body", m.Backend, backendEnum, true); err != nil {
		return err
	}

	return nil
}

func (m *SignRequest) validateChainType(formats strfmt.Registry) error {

	if err := validate.Required("chainType", "body", m.ChainType); err != nil {
		return err
	}

	// value enum
	if err := validate.EnumCase("chainType", "body", *m.ChainType, chainTypeEnum, true); err != nil {
		return err
	}

	return nil
}

func (m *SignRequest) validateErrors(formats strfmt.Registry) error {

	if err := validate.Required("errors", "body", m.Errors); err != nil {
		return err
	}

	for i := 0; i < len(m.Errors); i++ {
		if swag.IsZero(m.Errors[i]) { // not required
			continue
		}

		if err := m.Errors[i].Validate(formats); err != nil {
			if ve, ok := err.(*errors.Validation); ok {
				return ve.ValidateName("errors" + "." + strconv.Itoa(i))
			}
			return err
		}
	}

	return nil
}

func (m *SignRequest) validateID(formats strfmt.Registry) error {

	if err := validate.Required("id", "body", m.ID); err != nil {
		return err
	}

	if err := validate.FormatOf("id", "body", "uuid", m.ID.String(), formats); err != nil {
		return err
	}

	return nil
}

func (m *SignRequest) validatePresentation(formats strfmt.Registry) error {
	if swag.IsZero(m.Presentation) { // not required
		return nil
	}

	if err := m.Presentation.Validate(formats); err != nil {
		if ve, ok := err.(*errors.Validation); ok {
			return ve.ValidateName("presentation")
		}
		return err
	}

	return nil
}

func (m *SignRequest) validateStatus(formats strfmt.Registry) error {

	if err := validate.Required("status", "body", m.Status); err != nil {
		return err
	}

	// value enum
	if err := validate.EnumCase("status", "body", *m.Status, statusEnum, true); err != nil {
		return err
	}

	return nil
}

func validateDateTime(path string, value *strfmt.DateTime, formats strfmt.Registry) error {

	if err := validate.Required(path, "body", value); err != nil {
		return err
	}

	if err := validate.FormatOf(path, "body", "date-time", value.String(), formats); err != nil {
		return err
	}

	return nil
}

// MarshalBinary interface implementation
func (m *SignRequest) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *SignRequest) UnmarshalBinary(b []byte) error {
	var res SignRequest
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}

// SignRequestError sign request error
//
// swagger:model signRequestError
type SignRequestError struct {

	// kind
	// Required: true
	Kind *string `json:"kind"`

	// message
	// Required: true
	Message *string `json:"message"`
}

// Validate validates this sign request error
func (m *SignRequestError) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("kind", "body", m.Kind); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("message", "body", m.Message); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// SignRequestPresentation Whatever was last shown for a pending request
//
// swagger:model signRequestPresentation
type SignRequestPresentation struct {

	// internal
	Internal *InternalPresentation `json:"internal,omitempty"`

	// ledger
	Ledger *LedgerPresentation `json:"ledger,omitempty"`

	// qr
	Qr *QrPresentation `json:"qr,omitempty"`
}

// Validate validates this sign request presentation
func (m *SignRequestPresentation) Validate(formats strfmt.Registry) error {
	var res []error

	if m.Ledger != nil {
		if err := m.Ledger.Validate(formats); err != nil {
			res = append(res, nestedName("ledger", err))
		}
	}

	if m.Qr != nil {
		if err := m.Qr.Validate(formats); err != nil {
			res = append(res, nestedName("qr", err))
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func nestedName(name string, err error) error {
	if ve, ok := err.(*errors.Validation); ok {
		return ve.ValidateName(name)
	}
	return err
}

// LedgerPresentation ledger presentation
//
// swagger:model ledgerPresentation
type LedgerPresentation struct {

	// ledger Id
	// Required: true
	LedgerID *string `json:"ledgerId"`

	// Hex encoded bytes sent to the device
	// Required: true
	LedgerPayload *string `json:"ledgerPayload"`
}

// Validate validates this ledger presentation
func (m *LedgerPresentation) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("ledgerId", "body", m.LedgerID); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("ledgerPayload", "body", m.LedgerPayload); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// QrPresentation qr presentation
//
// swagger:model qrPresentation
type QrPresentation struct {

	// is ethereum
	IsEthereum bool `json:"isEthereum,omitempty"`

	// Payload was replaced by its blake2b-256 hash
	IsQrHashed bool `json:"isQrHashed,omitempty"`

	// qr address
	// Required: true
	QrAddress *string `json:"qrAddress"`

	// qr Id
	// Required: true
	QrID *string `json:"qrId"`

	// qr payload
	// Required: true
	QrPayload *string `json:"qrPayload"`
}

// Validate validates this qr presentation
func (m *QrPresentation) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("qrAddress", "body", m.QrAddress); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("qrId", "body", m.QrID); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("qrPayload", "body", m.QrPayload); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// InternalPresentation internal presentation
//
// swagger:model internalPresentation
type InternalPresentation struct {

	// address
	Address string `json:"address,omitempty"`

	// chain
	Chain string `json:"chain,omitempty"`

	// chain type
	ChainType string `json:"chainType,omitempty"`

	// extrinsic type
	ExtrinsicType string `json:"extrinsicType,omitempty"`

	// id
	ID string `json:"id,omitempty"`

	// payload
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GetSignRequestsResponse get sign requests response
//
// swagger:model getSignRequestsResponse
type GetSignRequestsResponse struct {

	// data
	// Required: true
	Data []*SignRequest `json:"data"`
}

// Validate validates this get sign requests response
func (m *GetSignRequestsResponse) Validate(formats strfmt.Registry) error {

	if err := validate.Required("data", "body", m.Data); err != nil {
		return err
	}

	for i := 0; i < len(m.Data); i++ {
		if swag.IsZero(m.Data[i]) { // not required
			continue
		}

		if err := m.Data[i].Validate(formats); err != nil {
			return nestedName("data"+"."+strconv.Itoa(i), err)
		}
	}

	return nil
}

// PendingPromise An external response the signer is waiting for
//
// swagger:model pendingPromise
type PendingPromise struct {

	// created at
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt"`

	// Id of the sign request awaiting the response
	// Required: true
	// Format: uuid
	ID *strfmt.UUID `json:"id"`

	// status
	// Required: true
	Status *string `json:"status"`
}

// Validate validates this pending promise
func (m *PendingPromise) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validateDateTime("createdAt", m.CreatedAt, formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("id", "body", m.ID); err != nil {
		res = append(res, err)
	} else if err := validate.FormatOf("id", "body", "uuid", m.ID.String(), formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("status", "body", m.Status); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// GetPendingPromisesResponse get pending promises response
//
// swagger:model getPendingPromisesResponse
type GetPendingPromisesResponse struct {

	// data
	// Required: true
	Data []*PendingPromise `json:"data"`
}

// Validate validates this get pending promises response
func (m *GetPendingPromisesResponse) Validate(formats strfmt.Registry) error {

	if err := validate.Required("data", "body", m.Data); err != nil {
		return err
	}

	for i := 0; i < len(m.Data); i++ {
		if swag.IsZero(m.Data[i]) { // not required
			continue
		}

		if err := m.Data[i].Validate(formats); err != nil {
			return nestedName("data"+"."+strconv.Itoa(i), err)
		}
	}

	return nil
}
