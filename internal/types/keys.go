package types

import (
	"strconv"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

var keyTypeEnum []interface{}

func init() {
	keyTypeEnum = enumOf(`["secp256k1","ed25519"]`)
}

// KeyItem A key pair held by the keyring
//
// swagger:model keyItem
type KeyItem struct {

	// address
	// Required: true
	Address *string `json:"address"`

	// key type
	// Required: true
	// Enum: [secp256k1 ed25519]
	KeyType *string `json:"keyType"`

	// Locked pairs cannot sign until unlocked with their password
	// Required: true
	Locked *bool `json:"locked"`
}

// Validate validates this key item
func (m *KeyItem) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.Required("address", "body", m.Address); err != nil {
		res = append(res, err)
	}

	if err := m.validateKeyType(formats); err != nil {
		res = append(res, err)
	}

	if err := validate.Required("locked", "body", m.Locked); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *KeyItem) validateKeyType(formats strfmt.Registry) error {

	if err := validate.Required("keyType", "body", m.KeyType); err != nil {
		return err
	}

	// value enum
	if err := validate.EnumCase("keyType", "body", *m.KeyType, keyTypeEnum, true); err != nil {
		return err
	}

	return nil
}

// GetKeysResponse get keys response
//
// swagger:model getKeysResponse
type GetKeysResponse struct {

	// data
	// Required: true
	Data []*KeyItem `json:"data"`
}

// Validate validates this get keys response
func (m *GetKeysResponse) Validate(formats strfmt.Registry) error {

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

// PostUnlockKeyPayload post unlock key payload
//
// swagger:model postUnlockKeyPayload
type PostUnlockKeyPayload struct {

	// Password the key pair was stored with
	// Required: true
	// Min Length: 1
	Password *string `json:"password"`
}

// Validate validates this post unlock key payload
func (m *PostUnlockKeyPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := m.validatePassword(formats); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

func (m *PostUnlockKeyPayload) validatePassword(formats strfmt.Registry) error {

	if err := validate.Required("password", "body", m.Password); err != nil {
		return err
	}

	if err := validate.MinLength("password", "body", *m.Password, 1); err != nil {
		return err
	}

	return nil
}
