// Package definition loads contracts from declarative YAML or JSON files.
//
// A definition file is the contract-as-data interchange form: it mirrors the
// export shape, with JSON Schema documents inline. Construction funnels
// through the contract package, so file-sourced contracts pass exactly the
// same validation as programmatically built ones.
package definition

import (
	"github.com/randalmurphal/arvo/pkg/arvo/contract"
)

// Definition is a declarative contract document.
type Definition struct {
	URI         string                       `json:"uri" yaml:"uri"`
	Type        string                       `json:"type" yaml:"type"`
	Description string                       `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    map[string]any               `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Versions    map[string]VersionDefinition `json:"versions" yaml:"versions"`
}

// VersionDefinition declares one contract version: inline JSON Schema
// documents for the accepted payload and every emitted event type.
type VersionDefinition struct {
	Accepts  map[string]any            `json:"accepts" yaml:"accepts"`
	Emits    map[string]map[string]any `json:"emits,omitempty" yaml:"emits,omitempty"`
	Metadata map[string]any            `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Contract compiles the definition's schema documents and constructs the
// contract. Schema compilation failures surface as
// *contract.InvalidSchemaError; everything else follows the contract
// package's construction rules.
func (d *Definition) Contract() (*contract.Contract, error) {
	versions := make(map[string]contract.VersionSpec, len(d.Versions))
	for key, vd := range d.Versions {
		spec := contract.VersionSpec{Metadata: vd.Metadata}

		if vd.Accepts != nil {
			accepts, err := contract.CompileSchema(vd.Accepts)
			if err != nil {
				return nil, &contract.InvalidSchemaError{URI: d.URI, Version: key, EventType: d.Type, Err: err}
			}
			spec.Accepts = accepts
		}

		if len(vd.Emits) > 0 {
			spec.Emits = make(map[string]*contract.Schema, len(vd.Emits))
			for emitType, doc := range vd.Emits {
				schema, err := contract.CompileSchema(doc)
				if err != nil {
					return nil, &contract.InvalidSchemaError{URI: d.URI, Version: key, EventType: emitType, Err: err}
				}
				spec.Emits[emitType] = schema
			}
		}

		versions[key] = spec
	}

	return contract.New(contract.Params{
		URI:         d.URI,
		Type:        d.Type,
		Description: d.Description,
		Metadata:    d.Metadata,
		Versions:    versions,
	})
}

// OrchestratorDefinition is a declarative orchestrator contract document.
type OrchestratorDefinition struct {
	URI         string                                   `json:"uri" yaml:"uri"`
	Name        string                                   `json:"name" yaml:"name"`
	Description string                                   `json:"description,omitempty" yaml:"description,omitempty"`
	Metadata    map[string]any                           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Versions    map[string]OrchestratorVersionDefinition `json:"versions" yaml:"versions"`
}

// OrchestratorVersionDefinition declares one orchestrator version: inline
// JSON Schema documents for the init and completion payloads.
type OrchestratorVersionDefinition struct {
	Init     map[string]any `json:"init" yaml:"init"`
	Complete map[string]any `json:"complete" yaml:"complete"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Contract compiles the definition's schema documents and constructs the
// orchestrator contract, with the same event type derivation and parent
// linkage merging as contract.NewOrchestrator.
func (d *OrchestratorDefinition) Contract() (*contract.Contract, error) {
	versions := make(map[string]contract.OrchestratorVersionSpec, len(d.Versions))
	for key, vd := range d.Versions {
		spec := contract.OrchestratorVersionSpec{Metadata: vd.Metadata}

		if vd.Init != nil {
			init, err := contract.CompileSchema(vd.Init)
			if err != nil {
				return nil, &contract.InvalidSchemaError{URI: d.URI, Version: key, Err: err}
			}
			spec.Init = init
		}
		if vd.Complete != nil {
			complete, err := contract.CompileSchema(vd.Complete)
			if err != nil {
				return nil, &contract.InvalidSchemaError{URI: d.URI, Version: key, Err: err}
			}
			spec.Complete = complete
		}

		versions[key] = spec
	}

	return contract.NewOrchestrator(contract.OrchestratorParams{
		URI:         d.URI,
		Name:        d.Name,
		Description: d.Description,
		Metadata:    d.Metadata,
		Versions:    versions,
	})
}
