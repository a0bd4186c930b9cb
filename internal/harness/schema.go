package harness

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaMu   sync.Mutex
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// loadSchema compiles the embedded CUE schema once.
func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Scenario"))
		if !schemaDef.Exists() {
			schemaErr = errors.New("scenario schema has no #Scenario definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// ValidateSchema checks a scenario YAML document against the embedded CUE
// schema: required fields, known ops and error codes, field types, and no
// unknown fields.
func ValidateSchema(data []byte) error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return errors.New("empty scenario document")
	}

	// A cue.Context is not safe for concurrent use.
	schemaMu.Lock()
	defer schemaMu.Unlock()

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}
