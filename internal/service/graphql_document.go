package service

import (
	"encoding/json"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation kinds of a GraphQL request, as far as the proxy cache is concerned.
const (
	opUnknown = iota
	opQuery
	opMutation
	opSubscription
)

// operationOf classifies a GraphQL request payload. Any mutation in the document makes it
// a mutation, then any subscription makes it a subscription; only a document made purely of
// queries is a query. Payloads that do not parse, or whose operationName is absent from the
// document, are opUnknown.
func operationOf(payload json.RawMessage) int {
	var req struct {
		Query         string `json:"query"`
		OperationName string `json:"operationName"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return opUnknown
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil || doc == nil || len(doc.Operations) == 0 {
		return opUnknown
	}
	if req.OperationName != "" && doc.Operations.ForName(req.OperationName) == nil {
		return opUnknown
	}

	kind := opQuery
	for _, op := range doc.Operations {
		switch op.Operation {
		case ast.Mutation:
			return opMutation
		case ast.Subscription:
			kind = opSubscription
		}
	}
	return kind
}
