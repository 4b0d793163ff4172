package sacrament

import "errors"

// Kind identifies a sacrament ceremony type offered by the parish.
type Kind string

// Sacrament kinds. The string values match what is stored in the
// booking_sacrament column and shown to users.
const (
	Wedding    Kind = "Wedding"
	Baptism    Kind = "Baptism"
	Confession Kind = "Confession"
	Anointing  Kind = "Anointing of the Sick"
	Communion  Kind = "First Communion"
	Burial     Kind = "Burial"
)

// ValidKinds contains all bookable sacrament kinds.
var ValidKinds = []Kind{Wedding, Baptism, Confession, Anointing, Communion, Burial}

// ErrInvalidKind is returned when a string does not name a known sacrament.
var ErrInvalidKind = errors.New("unknown sacrament")

// ChildDoc describes the sacrament-specific sub-document table linked
// from a booking row by foreign key.
type ChildDoc struct {
	Table   string // sub-document table name
	FKField string // booking column holding the sub-document id
}

// childDocs maps the kinds that carry a sub-document to its table and
// foreign-key column. Kinds absent from the map have no sub-document.
var childDocs = map[Kind]ChildDoc{
	Wedding: {Table: "booking_wedding_docu_tbl", FKField: "wedding_docu_id"},
	Baptism: {Table: "booking_baptism_docu_tbl", FKField: "baptism_docu_id"},
	Burial:  {Table: "booking_burial_docu_tbl", FKField: "burial_docu_id"},
}

// ChildDoc returns the sub-document mapping for the kind, if it has one.
// INVARIANT: Kind is not mutated
func (k Kind) ChildDoc() (ChildDoc, bool) {
	cd, ok := childDocs[k]
	return cd, ok
}

// Valid returns true if the kind names a known sacrament.
// INVARIANT: Kind is not mutated
func (k Kind) Valid() bool {
	for _, v := range ValidKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Parse converts a raw string to a Kind.
// PRE: s is a candidate sacrament name
// POST: Returns the Kind or ErrInvalidKind
func Parse(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// ChildDocTables returns every sub-document table name, used when wiring
// the generic record store's table allowlist.
func ChildDocTables() []string {
	tables := make([]string, 0, len(childDocs))
	for _, cd := range childDocs {
		tables = append(tables, cd.Table)
	}
	return tables
}
