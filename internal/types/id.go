package types

import "github.com/google/uuid"

// ID is the identifier type shared by rows that live in Supabase (uuid text).
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}
