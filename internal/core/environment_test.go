package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"production":    Production,
		" Production ":  Production,
		"STAGING":       Staging,
		"testing":       Testing,
		"":              Development,
		"qa-cluster-7":  Development,
		"development":   Development,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEnvironment(in), "input %q", in)
	}
	assert.True(t, Production.IsProduction())
	assert.False(t, Staging.IsProduction())
}
