// Package schema reads, writes and validates workflow documents.
//
// Documents are JSON or YAML encodings of domain.Workflow. Validate checks a
// document against a node catalog and reports every problem at once:
//
//	wf, err := schema.LoadFile("flows/podcast.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := schema.Validate(wf, catalog.Builtin()); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
//
// Node data is checked against the Settings declared by each definition, using a
// small type system ("string", "int", "float", "bool", "object", "any" and
// "[T]" lists). Settings are optional: only fields present in the data are checked.
package schema
