// Package monitor validates assembled request payloads against a JSON schema.
// Deployments use it to pin down the payload contract a provider integration
// was certified against, so a drifting field shape is caught before dispatch
// instead of as an opaque provider rejection.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/request"
)

// ContractMonitor validates payload documents against a JSON schema.
type ContractMonitor struct {
	schemaLoader gojsonschema.JSONLoader
}

// NewContractMonitor loads the schema from a file path.
func NewContractMonitor(schemaPath string) (*ContractMonitor, error) {
	return newMonitor(gojsonschema.NewReferenceLoader("file://" + schemaPath))
}

// NewContractMonitorFromBytes loads the schema from raw JSON.
func NewContractMonitorFromBytes(schema []byte) (*ContractMonitor, error) {
	return newMonitor(gojsonschema.NewBytesLoader(schema))
}

func newMonitor(loader gojsonschema.JSONLoader) (*ContractMonitor, error) {
	if _, err := gojsonschema.NewSchema(loader); err != nil {
		return nil, fmt.Errorf("monitor: loading schema: %w", err)
	}
	return &ContractMonitor{schemaLoader: loader}, nil
}

// Validate validates a JSON document against the schema. It returns whether
// the document is valid and, when it is not, the list of violations.
func (cm *ContractMonitor) Validate(document []byte) (bool, []string, error) {
	documentLoader := gojsonschema.NewBytesLoader(document)
	result, err := gojsonschema.Validate(cm.schemaLoader, documentLoader)
	if err != nil {
		return false, nil, fmt.Errorf("monitor: validating document: %w", err)
	}

	if result.Valid() {
		return true, nil, nil
	}

	var violations []string
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return false, violations, nil
}

// BeforeRequestSend lets a ContractMonitor act as a pre-dispatch hook: a
// payload that violates the schema vetoes the request.
func (cm *ContractMonitor) BeforeRequestSend(_ context.Context, _ *commerce.Transaction, p *request.Payload) error {
	document, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("monitor: marshaling payload: %w", err)
	}

	valid, violations, err := cm.Validate(document)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("monitor: payload violates contract: %s", FormatErrors(violations))
	}
	return nil
}

// FormatErrors joins validation errors into a single message.
func FormatErrors(violations []string) string {
	return strings.Join(violations, "; ")
}
