package agentuicmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	agentuicmder "github.com/papercomputeco/agentui/cmd/agentui"
)

var _ = Describe("NewAgentUICmd", func() {
	It("registers every subcommand", func() {
		cmd := agentuicmder.NewAgentUICmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "chat", "transcripts", "init", "config", "version"))
	})

	It("has global --debug and --config-dir flags", func() {
		cmd := agentuicmder.NewAgentUICmd()

		debug := cmd.PersistentFlags().Lookup("debug")
		Expect(debug).NotTo(BeNil())
		Expect(debug.Shorthand).To(Equal("d"))

		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("keeps subcommand shorthands clear of the global flags", func() {
		cmd := agentuicmder.NewAgentUICmd()
		for _, sub := range cmd.Commands() {
			Expect(sub.Flags().ShorthandLookup("d")).To(BeNil(), "subcommand %q reuses -d", sub.Name())
		}
	})
})
