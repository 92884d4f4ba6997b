// Package models defines the repository record, the field-set callers submit
// to the store, and the column schema both are keyed by.
package models

// Field-set keys. They double as column names in the repo table.
const (
	ColID          = "id"
	ColAddress     = "address"
	ColName        = "name"
	ColDescription = "description"
	ColInUse       = "inuse"
	ColPriority    = "priority"
	ColPublicKey   = "pubkey"
	ColFingerprint = "fingerprint"
	ColMaxAge      = "maxage"
	ColLastETag    = "lastetag"
	ColLastUpdated = "lastUpdated"
	ColVersion     = "version"
)

// ColumnKind is the Go type family a column value is normalized to.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt
	KindBool
	KindTime
)

var columnKinds = map[string]ColumnKind{
	ColID:          KindInt,
	ColAddress:     KindString,
	ColName:        KindString,
	ColDescription: KindString,
	ColInUse:       KindBool,
	ColPriority:    KindInt,
	ColPublicKey:   KindString,
	ColFingerprint: KindString,
	ColMaxAge:      KindInt,
	ColLastETag:    KindString,
	ColLastUpdated: KindTime,
	ColVersion:     KindInt,
}

// AllColumns is the full projection, in table order.
var AllColumns = []string{
	ColID, ColAddress, ColName, ColDescription, ColInUse, ColPriority,
	ColPublicKey, ColFingerprint, ColMaxAge, ColLastUpdated, ColLastETag, ColVersion,
}

// IsColumn reports whether name is a known repo column.
func IsColumn(name string) bool {
	_, ok := columnKinds[name]
	return ok
}

// KindOf returns the value kind of a column. Unknown names read as KindString.
func KindOf(name string) ColumnKind {
	return columnKinds[name]
}
