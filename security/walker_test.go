package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveContext(t *testing.T) {
	tests := []struct {
		path string
		want Context
	}{
		{path: "paths./pets.get.responses.200.content.example", want: ContextExample},
		{path: "components.examples.pet.value", want: ContextExample},
		{path: "info.description", want: ContextDescription},
		{path: "paths./pets.get.summary", want: ContextDescription},
		{path: "paths./pets.get.parameters[0].name", want: ContextParameter},
		{path: "paths./pets.get.responses.headers.X-Rate", want: ContextParameter},
		{path: "components.schemas.Pet.properties.name", want: ContextSchema},
		{path: "info.title", want: ContextMetadata},
		{path: "", want: ContextMetadata},
		// example wins over parameter even when nested under one
		{path: "paths./pets.parameters[0].example", want: ContextExample},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deriveContext(tt.path), tt.path)
	}
}

func TestWalkStrings_Paths(t *testing.T) {
	doc := map[string]interface{}{
		"a": []interface{}{"x", map[string]interface{}{"b": "y"}},
		"n": 1,
	}

	got := map[string]string{}
	walkStrings(doc, "", func(path, s string) { got[path] = s })

	assert.Equal(t, map[string]string{
		"a[0]":   "x",
		"a[1].b": "y",
	}, got)
}
