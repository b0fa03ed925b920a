// Package harness provides scenario and golden-file testing for generated
// output.
//
// # Scenario Format
//
// Scenarios are YAML files describing one generation run and the assertions
// its rendered outputs must satisfy:
//
//	name: buffer_headers
//	description: "One object with one method yields map/reference/release"
//	idl: ../idl/buffer.yaml
//	targets: [webnn_headers]
//	assertions:
//	  - type: output_contains
//	    output: src/include/webnn/webnn.h
//	    text: "webnnBufferMap("
//	  - type: output_order
//	    output: src/include/webnn/webnn.h
//	    texts: ["webnnBufferMap(", "webnnBufferReference(", "webnnBufferRelease("]
//
// The idl path is resolved relative to the scenario file.
//
// # Assertion Types
//
//   - output_contains: the output contains text
//   - output_absent: the output does not contain text
//   - output_order: every entry of texts appears, in order
//   - output_count: text appears exactly count times
//   - output_exists: the output was produced at all
//
// The harness does not render anything itself; callers render the
// scenario's IDL and targets and hand the outputs to CheckAssertions.
//
// # Golden Files
//
// AssertGoldenJSON serializes with ir.MarshalCanonical and compares against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./... -update
package harness
