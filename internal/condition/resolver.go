// Package condition fills attestation policy conditions with values taken from
// the claim's property data.
//
// A condition refers to values with MATCHER#<json path># tokens, for example
//
//	(ATTESTOR#$.schools#.contains(REQUESTER#$.school#))
//
// Resolving it for REQUESTER replaces every REQUESTER token with a literal; the
// other tokens are left for the attestor side to fill.
package condition

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
)

// Resolver substitutes matcher tokens in policy conditions.
type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

// Resolve replaces every matcher#path# token in condition with the value at
// path in body. Strings are single-quoted; other values are written as JSON.
func (r *Resolver) Resolve(_ context.Context, body models.Document, matcher, condition string) (string, error) {
	if matcher == "" || !strings.Contains(condition, matcher+"#") {
		return condition, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode condition input: %w", err)
	}

	token := regexp.MustCompile(regexp.QuoteMeta(matcher) + `#([^#]+)#`)
	var resolveErr error
	out := token.ReplaceAllStringFunc(condition, func(m string) string {
		if resolveErr != nil {
			return m
		}
		path := token.FindStringSubmatch(m)[1]
		value := gjson.GetBytes(raw, jsondoc.GJSONPath(path))
		if !value.Exists() {
			resolveErr = fmt.Errorf("%s: %w", path, models.ErrPropertyPathNotFound)
			return m
		}
		return literal(value)
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return out, nil
}

func literal(v gjson.Result) string {
	if v.Type == gjson.String {
		return "'" + strings.ReplaceAll(v.String(), "'", `\'`) + "'"
	}
	return v.Raw
}
