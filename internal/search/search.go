package search

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"busfinder/internal/catalog"

	"github.com/go-playground/validator/v10"
)

// User-facing messages.
const (
	MsgSelectDifferent = "Please select different source and destination."
	MsgNoRoute         = "No route found."
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid search request")
	// ErrNoRoute means neither a direct route nor a combination exists.
	// It is an expected outcome, not a fault.
	ErrNoRoute = errors.New(MsgNoRoute)
)

// Query is a search request. Both stops must be set, distinct, and served
// by at least one catalog route.
type Query struct {
	Source      string `json:"from" validate:"required,knownstop"`
	Destination string `json:"to" validate:"required,nefield=Source,knownstop"`
}

// Kind tells which search produced a Result.
type Kind string

const (
	KindDirect   Kind = "direct"
	KindTransfer Kind = "transfer"
)

// Result holds the outcome of a successful search. Exactly one of Direct
// and Combinations is non-empty, as indicated by Kind.
type Result struct {
	Query        Query                 `json:"query"`
	Kind         Kind                  `json:"kind"`
	Direct       []DirectMatch         `json:"direct,omitempty"`
	Combinations []TransferCombination `json:"combinations,omitempty"`
}

// Len returns the number of options in the result.
func (r *Result) Len() int {
	if r.Kind == KindDirect {
		return len(r.Direct)
	}
	return len(r.Combinations)
}

// ValidationError describes why a Query was rejected before searching.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Search runs the full lookup: validation, then direct routes, then, only
// when no direct route exists, transfer combinations. It returns a
// *ValidationError for bad input and ErrNoRoute when nothing connects the stops.
func (e *Engine) Search(q Query) (*Result, error) {
	if err := e.Validate(q); err != nil {
		return nil, err
	}
	if direct := e.FindDirectRoutes(q.Source, q.Destination); len(direct) > 0 {
		return &Result{Query: q, Kind: KindDirect, Direct: direct}, nil
	}
	if combos := e.FindCombinations(q.Source, q.Destination); len(combos) > 0 {
		return &Result{Query: q, Kind: KindTransfer, Combinations: combos}, nil
	}
	return nil, ErrNoRoute
}

// Validate checks q against the catalog without searching.
func (e *Engine) Validate(q Query) error {
	err := e.validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate query: %w", err)
	}

	ve := &ValidationError{Fields: make(map[string][]string)}
	var unknown []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "nefield":
			ve.Fields[fe.Field()] = append(ve.Fields[fe.Field()], MsgSelectDifferent)
			ve.Message = MsgSelectDifferent
		case "knownstop":
			msg := fmt.Sprintf("Unknown stop: %s", fe.Value())
			ve.Fields[fe.Field()] = append(ve.Fields[fe.Field()], msg)
			unknown = append(unknown, msg)
		default:
			ve.Fields[fe.Field()] = append(ve.Fields[fe.Field()], fe.Error())
		}
	}
	if ve.Message == "" {
		sort.Strings(unknown)
		ve.Message = strings.Join(unknown, "; ")
	}
	if ve.Message == "" {
		ve.Message = MsgSelectDifferent
	}
	return ve
}

func newValidator(c *catalog.Catalog) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Only fails on a malformed tag name, which is a constant here.
	_ = v.RegisterValidation("knownstop", func(fl validator.FieldLevel) bool {
		return c.HasStop(fl.Field().String())
	})
	return v
}
