//go:build bedrock

package bedrock

import "testing"

// New requires real AWS credentials to resolve a session, so this package's
// coverage is limited to the request/response marshaling shapes exercised
// indirectly through Complete in integration environments with AWS access
// configured. No unit test constructs a live client here.
func TestProviderNameIsBedrock(t *testing.T) {
	p := &Provider{modelID: "anthropic.claude-3-5-sonnet-20241022-v2:0"}
	if p.Name() != "bedrock" {
		t.Fatalf("expected bedrock, got %s", p.Name())
	}
}
