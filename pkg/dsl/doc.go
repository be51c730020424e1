/*
Package dsl provides a fluent Go builder for flow networks.

It is an alternative to network files when a network is generated in code or
written inline in a test.

Example usage:

	b := dsl.New(4)
	b.Source().To(1, 3).To(2, 1)
	b.Node(1).To(b.SinkID(), 2)
	b.Node(2).To(b.SinkID(), 4)

	eng, err := b.Granularity(domain.GranularitySelect).Build()
	if err != nil {
		log.Fatal(err)
	}
*/
package dsl
