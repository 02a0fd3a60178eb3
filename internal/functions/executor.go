// Package functions executes the completion functions declared by entity
// schemas. A function copies values into the entity: each result entry names a
// target path and a source, which is either a positional argument of the call
// ("arg1", "arg2", ...) or a JSON path into the input.
package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
)

var (
	ErrInvalidCallSpec = errors.New("invalid function call")
	ErrInvalidTarget   = errors.New("invalid function result target")
)

const argPrefix = "arg"

// Executor evaluates function definitions against a JSON input.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

// Execute evaluates callSpec, e.g. "#/functionDefinitions/setGrade($.attestationResponse.response)",
// and applies def.Result to a copy of input.
func (e *Executor) Execute(_ context.Context, callSpec string, def models.FunctionDefinition, input models.Document) (models.Document, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode function input: %w", err)
	}

	argExprs, err := parseArgs(callSpec)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(argExprs))
	for i, expr := range argExprs {
		args[i] = evaluate(raw, expr)
	}

	// Targets apply in key order so a parent is written before its children.
	targets := lo.Keys(def.Result)
	slices.Sort(targets)

	out := raw
	for _, target := range targets {
		source := def.Result[target]
		path := jsondoc.GJSONPath(target)
		if path == "@this" || strings.Contains(path, "#") {
			return nil, fmt.Errorf("%s: %w", target, ErrInvalidTarget)
		}
		value, err := resolveSource(raw, source, args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		if out, err = sjson.SetBytes(out, path, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", target, err)
		}
	}
	return jsondoc.Decode(out)
}

func resolveSource(raw []byte, source string, args []any) (any, error) {
	if n, ok := strings.CutPrefix(source, argPrefix); ok {
		i, err := strconv.Atoi(n)
		if err == nil {
			if i < 1 || i > len(args) {
				return nil, fmt.Errorf("%s out of range (%d arguments): %w", source, len(args), ErrInvalidCallSpec)
			}
			return args[i-1], nil
		}
	}
	return evaluate(raw, source), nil
}

// evaluate reads a JSON path from raw, or returns expr as a literal.
func evaluate(raw []byte, expr string) any {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "$") {
		return gjson.GetBytes(raw, jsondoc.GJSONPath(expr)).Value()
	}
	if unquoted, err := strconv.Unquote(expr); err == nil {
		return unquoted
	}
	if len(expr) >= 2 && expr[0] == '\'' && expr[len(expr)-1] == '\'' {
		return expr[1 : len(expr)-1]
	}
	if gjson.Valid(expr) {
		return gjson.Parse(expr).Value()
	}
	return expr
}

// parseArgs returns the argument expressions of "name(a, b)". A spec without
// parentheses has no arguments.
func parseArgs(callSpec string) ([]string, error) {
	spec := strings.TrimSpace(callSpec)
	open := strings.Index(spec, "(")
	if open < 0 {
		return nil, nil
	}
	if !strings.HasSuffix(spec, ")") {
		return nil, fmt.Errorf("%q: %w", callSpec, ErrInvalidCallSpec)
	}
	inner := strings.TrimSpace(spec[open+1 : len(spec)-1])
	if inner == "" {
		return nil, nil
	}

	var (
		args  []string
		start int
		quote rune
	)
	for i, r := range inner {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ',':
			args = append(args, strings.TrimSpace(inner[start:i]))
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%q: unterminated string: %w", callSpec, ErrInvalidCallSpec)
	}
	return append(args, strings.TrimSpace(inner[start:])), nil
}
