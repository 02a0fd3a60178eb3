package models

// FunctionDefinition is a named side effect a policy can run on completion.
// Result maps a target path on the entity to a source expression: either a
// JSONPath into the function input or a positional argument ("arg1", ...)
// taken from the policy's completion value.
type FunctionDefinition struct {
	Name   string            `json:"name"`
	Result map[string]string `json:"result"`
}
