package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/silentsignal/vitals/internal/adapters/agent"
	. "github.com/smartystreets/goconvey/convey"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func request(msg string) agent.Request {
	return agent.Request{Message: msg, Vitals: agent.VitalsFrom(current())}
}

func TestResponderKeywords(t *testing.T) {
	Convey("Given a responder without a generator", t, func() {
		r := agent.NewResponder()
		ctx := context.Background()

		Convey("When the message asks for a scan", func() {
			resp := r.Reply(ctx, request("Can you MEASURE my pulse?"))

			Convey("Then the behavioral agent triggers the pacer", func() {
				So(resp.Agent, ShouldEqual, "Behavioral Agent")
				So(resp.Action, ShouldEqual, "trigger_pacer")
				So(resp.Response, ShouldContainSubstring, "30%")
			})
		})

		Convey("When the message asks for a doctor", func() {
			resp := r.Reply(ctx, request("book an appointment with a psychiatrist"))

			Convey("Then the scheduler agent opens the experts view", func() {
				So(resp.Agent, ShouldEqual, "Scheduler Agent")
				So(resp.Action, ShouldEqual, "open_experts")
			})
		})

		Convey("When the message matches no keyword", func() {
			resp := r.Reply(ctx, request("I feel tired"))

			Convey("Then the system agent reports offline mode", func() {
				So(resp.Agent, ShouldEqual, "System")
				So(resp.Response, ShouldEqual, agent.OfflineModeNotice)
				So(agent.ParseIntent(resp.Action), ShouldEqual, agent.IntentNone)
			})
		})
	})
}

func TestResponderGenerator(t *testing.T) {
	Convey("Given a responder with a generator", t, func() {
		gen := &stubGenerator{text: "  Rest and hydrate.  "}
		r := agent.NewResponder(agent.WithGenerator(gen))

		Convey("When a free-form question arrives", func() {
			resp := r.Reply(context.Background(), request("I feel tired"))

			Convey("Then the generated text is returned with vitals in the prompt", func() {
				So(resp.Response, ShouldEqual, "Rest and hydrate.")
				So(resp.Agent, ShouldEqual, "Health Mind")
				So(gen.prompt, ShouldContainSubstring, "heart rate 85 BPM")
				So(gen.prompt, ShouldContainSubstring, "I feel tired")
			})
		})

		Convey("When the generator fails", func() {
			gen.err = errors.New("quota exceeded")
			resp := r.Reply(context.Background(), request("I feel tired"))

			Convey("Then the offline-mode notice is returned", func() {
				So(resp.Response, ShouldEqual, agent.OfflineModeNotice)
			})
		})

		Convey("When keywords match", func() {
			resp := r.Reply(context.Background(), request("start a scan"))

			Convey("Then the generator is not consulted", func() {
				So(gen.prompt, ShouldBeEmpty)
				So(resp.Action, ShouldEqual, "trigger_pacer")
			})
		})
	})
}

func TestResponderAsClient(t *testing.T) {
	Convey("Given a bridge wired straight to a responder", t, func() {
		bridge := agent.NewBridge(agent.NewResponder())

		Convey("When the user asks for a doctor", func() {
			out, err := bridge.Send(context.Background(), "I need a doctor", current())

			Convey("Then the outcome carries the open_experts intent", func() {
				So(err, ShouldBeNil)
				So(out.Kind, ShouldEqual, agent.KindReplyWithIntent)
				So(out.Intent, ShouldEqual, agent.IntentOpenExperts)
			})
		})
	})
}

func TestOllamaGenerator(t *testing.T) {
	Convey("Given an Ollama-compatible server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/generate" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["model"] != "llama3" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"response":"Take a slow breath."}`))
		}))
		defer srv.Close()

		Convey("When generating with the right model", func() {
			text, err := agent.NewOllamaGenerator(srv.URL+"/", "llama3", srv.Client()).Generate(context.Background(), "hi")

			Convey("Then the completion is returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldEqual, "Take a slow breath.")
			})
		})

		Convey("When the server rejects the request", func() {
			_, err := agent.NewOllamaGenerator(srv.URL, "other", srv.Client()).Generate(context.Background(), "hi")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
