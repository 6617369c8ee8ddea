package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/agentui/pkg/backend/openai"
)

func chunkJSON(content string) string {
	data, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index": 0,
			"delta": map[string]any{"content": content},
		}},
	})
	return string(data)
}

var _ = Describe("Backend", func() {
	var (
		server   *httptest.Server
		received map[string]any
	)

	AfterEach(func() {
		server.Close()
	})

	It("streams delta content", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			w.Header().Set("Content-Type", "text/event-stream")
			for _, c := range []string{`{"type":"mess`, "", `age"}`} {
				fmt.Fprintf(w, "data: %s\n\n", chunkJSON(c))
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))

		b := openai.New(openai.Config{APIKey: "k", BaseURL: server.URL})
		src, err := b.Stream(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		defer src.Close()

		var chunks []string
		for {
			c, err := src.Next(context.Background())
			if errors.Is(err, io.EOF) {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			chunks = append(chunks, c)
		}

		Expect(chunks).To(Equal([]string{`{"type":"mess`, `age"}`}))
		Expect(received["model"]).To(Equal(openai.DefaultModel))
		Expect(received["stream"]).To(BeTrue())
	})

	It("surfaces upstream errors", func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
		}))

		b := openai.New(openai.Config{APIKey: "k", BaseURL: server.URL})
		src, err := b.Stream(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		defer src.Close()

		_, err = src.Next(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, io.EOF)).To(BeFalse())
	})

	It("names itself after the model", func() {
		server = httptest.NewServer(http.NotFoundHandler())
		Expect(openai.New(openai.Config{Model: "gpt-4.1"}).Name()).To(Equal("openai/gpt-4.1"))
	})
})
