package equityledger

import "github.com/xraph/equityledger/id"

// ID is the identifier type for derived EquityLedger records.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
