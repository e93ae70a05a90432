/*
Package arvo implements the contract layer of an event-driven system: the
CloudEvents envelope, the validators shared across the library, and (through
its subpackages) versioned contracts, the orchestration subject codec, and
contract-bound event factories.

# Overview

Arvo treats service interfaces as data. A contract declares, per semantic
version, the payload schema a handler accepts and the schemas of everything
it emits; events are stamped with a dataschema reference binding them to one
contract version; workflow identity travels in a compact compressed subject
token. Everything is validated eagerly, so invalid contracts, subjects and
events never propagate past their construction site.

# Packages

  - arvo (this package): the Event envelope with the Arvo extension
    attributes, the CloudEvents HTTP binding, and the shared validators.
  - arvo/semver: the strict MAJOR.MINOR.PATCH version utility.
  - arvo/subject: the workflow identity token codec with parent/child
    lineage derivation.
  - arvo/contract: versioned contracts, the orchestrator specialization,
    the contract registry, and JSON-Schema export.
  - arvo/factory: contract-bound factories that validate payloads and stamp
    complete events.
  - arvo/definition: contracts loaded from YAML/JSON definition files.
  - arvo/catalog: persistence for exported contract documents.
  - arvo/observability: OpenTelemetry and slog helpers.

# Basic Usage

Declare a contract, resolve a version, and let the factory stamp events:

	reserve := contract.MustNew(contract.Params{
	    URI:  "#/contracts/order/reserve",
	    Type: "com.example.order.reserve",
	    Versions: map[string]contract.VersionSpec{
	        "1.0.0": {
	            Accepts: contract.MustCompileSchema(map[string]any{
	                "type":       "object",
	                "properties": map[string]any{"orderId": map[string]any{"type": "string"}},
	                "required":   []any{"orderId"},
	            }),
	            Emits: map[string]*contract.Schema{
	                "com.example.order.reserved": contract.MustCompileSchema(map[string]any{"type": "object"}),
	            },
	        },
	    },
	})

	v, err := reserve.Version("latest")
	if err != nil {
	    log.Fatal(err)
	}

	f := factory.New(v)
	evt, err := f.Accepts(ctx, factory.EventParams{
	    Source:  "com.example.api",
	    Subject: subjectToken,
	    Data:    map[string]any{"orderId": "ord-1"},
	})

Events that fail the contract's schema never come into existence; consumers
resolve the originating contract version from the event's dataschema via a
contract.Registry.

# Concurrency

Contracts, versioned views, subject tokens and events are immutable after
construction and safe for unsynchronized sharing. The registry and catalog
stores guard their mutable collections internally.
*/
package arvo
