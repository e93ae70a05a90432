package contract

import "regexp"

// Event type derivation applied by NewOrchestrator.
const (
	// OrchestratorInitPrefix prefixes every orchestrator init event type.
	OrchestratorInitPrefix = "arvo.orc."
	// OrchestratorCompleteSuffix ends every orchestrator completion event type.
	OrchestratorCompleteSuffix = ".done"
)

// ParentSubjectField is the required nullable field merged into every
// orchestrator accepted schema. It is null for root executions, otherwise
// it carries the parent execution's own subject token.
const ParentSubjectField = "parentSubject$$"

// Well-known metadata keys attached by NewOrchestrator. Caller metadata is
// preserved; these keys win on conflict.
const (
	MetadataContractType      = "contractType"
	MetadataRootType          = "rootType"
	MetadataInitEventType     = "initEventType"
	MetadataCompleteEventType = "completeEventType"

	// OrchestratorContractType is the value stored under MetadataContractType.
	OrchestratorContractType = "ArvoOrchestratorContract"
)

// orchestratorNamePattern restricts names to lowercase alphanumerics and
// dots. Unlike the general event type rule it does not require any dots;
// the derived event types always satisfy the dotted rule through the
// "arvo.orc." prefix.
var orchestratorNamePattern = regexp.MustCompile(`^[a-z0-9.]+$`)

// OrchestratorVersionSpec declares the init and completion payload shapes
// for one orchestrator contract version.
type OrchestratorVersionSpec struct {
	// Init validates the payload that starts an execution. The parent
	// linkage field is merged in automatically.
	Init *Schema
	// Complete validates the payload of the completion event.
	Complete *Schema
	// Metadata carries optional per-version annotations.
	Metadata map[string]any
}

// OrchestratorParams configures NewOrchestrator.
type OrchestratorParams struct {
	// URI is the contract's globally unique identity.
	URI string
	// Name is the orchestrator's base name, e.g. "order.flow". Only
	// lowercase alphanumerics and dots are allowed.
	Name string
	// Description is optional human-readable text.
	Description string
	// Metadata is an opaque annotation bag; the orchestrator convention
	// keys are added on top of it.
	Metadata map[string]any
	// Versions maps MAJOR.MINOR.PATCH keys to their init/complete specs.
	Versions map[string]OrchestratorVersionSpec
}

// NewOrchestrator builds the constrained contract shape used by workflow
// orchestrators. From the base name N it derives the init event type
// "arvo.orc."+N and the completion event type "arvo.orc."+N+".done", merges
// the required nullable parentSubject$$ field into every version's accepted
// schema, and records the derivation under well-known metadata keys. All
// other validation and resolution behavior is the generic contract's.
func NewOrchestrator(p OrchestratorParams) (*Contract, error) {
	if !orchestratorNamePattern.MatchString(p.Name) {
		return nil, &InvalidOrchestratorNameError{Name: p.Name}
	}
	initType := OrchestratorInitPrefix + p.Name
	completeType := initType + OrchestratorCompleteSuffix

	versions := make(map[string]VersionSpec, len(p.Versions))
	for key, spec := range p.Versions {
		if spec.Init == nil {
			return nil, &InvalidSchemaError{URI: p.URI, Version: key, EventType: initType, Err: errNilSchema}
		}
		if spec.Complete == nil {
			return nil, &InvalidSchemaError{URI: p.URI, Version: key, EventType: completeType, Err: errNilSchema}
		}
		accepts, err := mergeParentSubject(spec.Init)
		if err != nil {
			return nil, &InvalidSchemaError{URI: p.URI, Version: key, EventType: initType, Err: err}
		}
		versions[key] = VersionSpec{
			Accepts:  accepts,
			Emits:    map[string]*Schema{completeType: spec.Complete},
			Metadata: spec.Metadata,
		}
	}

	metadata := make(map[string]any, len(p.Metadata)+4)
	for k, v := range p.Metadata {
		metadata[k] = v
	}
	metadata[MetadataContractType] = OrchestratorContractType
	metadata[MetadataRootType] = p.Name
	metadata[MetadataInitEventType] = initType
	metadata[MetadataCompleteEventType] = completeType

	return New(Params{
		URI:         p.URI,
		Type:        initType,
		Description: p.Description,
		Metadata:    metadata,
		Versions:    versions,
	})
}

// IsOrchestrator reports whether c was built by NewOrchestrator, judged by
// its contract type metadata.
func IsOrchestrator(c *Contract) bool {
	return c.metadata[MetadataContractType] == OrchestratorContractType
}

// mergeParentSubject rebuilds an init schema with the parent linkage field
// added to its properties and required set.
func mergeParentSubject(init *Schema) (*Schema, error) {
	doc := init.Document()

	props, _ := doc["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
	}
	props[ParentSubjectField] = map[string]any{
		"type":      []any{"string", "null"},
		"minLength": 1,
	}
	doc["properties"] = props

	required, _ := doc["required"].([]any)
	present := false
	for _, field := range required {
		if field == ParentSubjectField {
			present = true
			break
		}
	}
	if !present {
		required = append(required, ParentSubjectField)
	}
	doc["required"] = required

	return CompileSchema(doc)
}
