package contract

import "sort"

// Versioned is a read-only projection of a Contract pinned to one resolved
// version. It holds a back-reference to its origin rather than copies of
// version-independent fields, so it always agrees with the parent contract.
// Views are created by Contract.Version and never mutated.
type Versioned struct {
	contract *Contract
	version  string
	spec     VersionSpec
}

// Contract returns the contract this view was resolved from.
func (v *Versioned) Contract() *Contract {
	return v.contract
}

// URI returns the parent contract's identity.
func (v *Versioned) URI() string {
	return v.contract.uri
}

// Version returns the resolved version key.
func (v *Versioned) Version() string {
	return v.version
}

// Description returns the parent contract's description.
func (v *Versioned) Description() string {
	return v.contract.description
}

// Metadata returns a copy of the parent contract's annotation bag.
func (v *Versioned) Metadata() map[string]any {
	return copyMetadata(v.contract.metadata)
}

// VersionMetadata returns a copy of the per-version annotation bag.
func (v *Versioned) VersionMetadata() map[string]any {
	return copyMetadata(v.spec.Metadata)
}

// Accepts returns the record for events this version's handler accepts:
// the contract's type paired with the version's accepts schema.
func (v *Versioned) Accepts() Record {
	return Record{Type: v.contract.typ, Schema: v.spec.Accepts}
}

// EmitMap returns a copy of the emitted type to schema mapping.
func (v *Versioned) EmitMap() map[string]*Schema {
	out := make(map[string]*Schema, len(v.spec.Emits))
	for emitType, schema := range v.spec.Emits {
		out[emitType] = schema
	}
	return out
}

// Emits returns the emitted records sorted by event type.
func (v *Versioned) Emits() []Record {
	out := make([]Record, 0, len(v.spec.Emits))
	for emitType, schema := range v.spec.Emits {
		out = append(out, Record{Type: emitType, Schema: schema})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Emit returns the schema for one emitted event type.
func (v *Versioned) Emit(eventType string) (*Schema, bool) {
	schema, ok := v.spec.Emits[eventType]
	return schema, ok
}

// SystemError returns the parent contract's standardized error record.
func (v *Versioned) SystemError() Record {
	return v.contract.SystemError()
}

// Dataschema returns the dataschema value events of this version carry:
// "{uri}/{version}".
func (v *Versioned) Dataschema() string {
	return Dataschema(v.contract.uri, v.version)
}
