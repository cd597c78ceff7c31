// Package idwrap wraps ULIDs used to identify ordered lists.
package idwrap

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type IDWrap struct {
	ulid ulid.ULID
}

func New(id ulid.ULID) IDWrap {
	return IDWrap{ulid: id}
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(s string) (IDWrap, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return IDWrap{}, fmt.Errorf("parse id %q: %w", s, err)
	}
	return IDWrap{ulid: id}, nil
}

func NewTextMust(s string) IDWrap {
	id, err := NewText(s)
	if err != nil {
		panic(err)
	}
	return id
}

func NewFromBytes(data []byte) (IDWrap, error) {
	var id ulid.ULID
	if err := id.UnmarshalBinary(data); err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: id}, nil
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) Compare(other IDWrap) int {
	return u.ulid.Compare(other.ulid)
}

func (u IDWrap) IsZero() bool {
	return u.ulid == ulid.ULID{}
}

func (u IDWrap) Time() time.Time {
	return ulid.Time(u.ulid.Time())
}

// Value stores the id as its 16 raw bytes.
func (u IDWrap) Value() (driver.Value, error) {
	return u.ulid[:], nil
}

// Scan accepts the raw 16 bytes or the text form.
func (u *IDWrap) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return u.ulid.UnmarshalBinary(v)
	case string:
		return u.ulid.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("idwrap: cannot scan %T", value)
	}
}

func (u IDWrap) MarshalText() ([]byte, error) {
	return u.ulid.MarshalText()
}

func (u *IDWrap) UnmarshalText(data []byte) error {
	return u.ulid.UnmarshalText(data)
}
