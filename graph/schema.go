package graph

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// SDL is the schema served to clients and code generators.
//
//go:embed schema.graphql
var SDL string

// Schema is SDL loaded together with the GraphQL prelude.
var Schema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: SDL})
