/*
Package dsl provides a fluent Go builder for workflow graphs.

It is an alternative to writing YAML or JSON documents, useful for generating
workflows in code and for tests:

	b := dsl.New("greeting")

	b.Add("prompt", catalog.TypeText).
		Set("text", "hello").
		To("text", "shout", "in")

	b.Add("shout", catalog.TypeTransform).
		Set("mode", "upper").
		To("out", "done", "in")

	b.Add("done", catalog.TypeSink)

	wf, err := b.Build(catalog.Builtin())

Nodes keep the order they were added in. Edges may name nodes added later;
they are resolved by Build, which rejects unknown types and missing nodes the
same way the graph model does.
*/
package dsl
