package llm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"smartrecover.dev/engine/internal/llm"
)

var _ = Describe("Manager", func() {
	It("constructs from a valid provider without making a network call", func() {
		mgr, err := llm.NewManager(llm.Config{Provider: "ollama", Model: "llama3.1"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.Current().Provider).To(Equal("ollama"))
	})

	It("rejects an unsupported provider", func() {
		_, err := llm.NewManager(llm.Config{Provider: "bogus"}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("hot-swaps the active config on Reload", func() {
		mgr, err := llm.NewManager(llm.Config{Provider: "ollama", Model: "llama3.1"}, nil)
		Expect(err).NotTo(HaveOccurred())

		err = mgr.Reload(llm.Config{Provider: "gemini", Model: "gemini-1.5-flash", GeminiAPIKey: "test-key"})
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.Current().Provider).To(Equal("gemini"))
		Expect(mgr.Current().Model).To(Equal("gemini-1.5-flash"))
	})

	It("leaves the active config unchanged when Reload is given an unsupported provider", func() {
		mgr, err := llm.NewManager(llm.Config{Provider: "ollama", Model: "llama3.1"}, nil)
		Expect(err).NotTo(HaveOccurred())

		err = mgr.Reload(llm.Config{Provider: "bogus"})
		Expect(err).To(HaveOccurred())
		Expect(mgr.Current().Provider).To(Equal("ollama"))
	})
})
