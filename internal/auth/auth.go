package auth

import (
	"context"
	"fmt"
	"strings"
)

type APIKeyValidator interface {
	Validate(ctx context.Context, apiKey string) bool
}

type StaticAPIKeyValidator struct {
	keys map[string]struct{}
}

// NewStaticAPIKeyValidator parses a comma-separated list of accepted keys.
func NewStaticAPIKeyValidator(spec string) (*StaticAPIKeyValidator, error) {
	validator := &StaticAPIKeyValidator{keys: map[string]struct{}{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		key := strings.TrimSpace(entry)
		if key == "" {
			return nil, fmt.Errorf("invalid static key list %q: empty key entry", spec)
		}
		validator.keys[key] = struct{}{}
	}

	return validator, nil
}

func (v *StaticAPIKeyValidator) Validate(_ context.Context, apiKey string) bool {
	_, ok := v.keys[apiKey]
	return ok
}
