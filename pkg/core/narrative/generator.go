package narrative

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"fpna_dashboard/pkg/core/llm"
	"fpna_dashboard/pkg/core/utils"
)

// Provider labels for summaries not written by a language model.
const (
	ProviderFallback      = "fallback"
	ProviderFallbackError = "fallback-error"
)

// Summary is the generated markdown and the provider that produced it.
type Summary struct {
	Markdown string
	Provider string
}

// Generator writes executive summaries. A nil Provider always yields the
// rule-based fallback.
type Generator struct {
	Provider llm.Provider
	Log      logrus.FieldLogger
}

// NewGenerator returns a Generator using p, which may be nil.
func NewGenerator(p llm.Provider, log logrus.FieldLogger) *Generator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Generator{Provider: p, Log: log}
}

// Generate never fails: any provider error degrades to the fallback text with
// the failure appended as a blockquote.
func (g *Generator) Generate(ctx context.Context, in *Inputs) Summary {
	fallback := Fallback(in)
	if g.Provider == nil {
		g.Log.Info("no narrative provider configured, using fallback summary")
		return Summary{Markdown: fallback, Provider: ProviderFallback}
	}

	text, err := g.ask(ctx, in)
	if err != nil {
		g.Log.WithError(err).WithField("provider", g.Provider.Name()).Warn("narrative provider failed, using fallback summary")
		return Summary{
			Markdown: fmt.Sprintf("%s\n\n> (LLM unavailable, using fallback: %v)", fallback, err),
			Provider: ProviderFallbackError,
		}
	}
	g.Log.WithField("provider", g.Provider.Name()).Info("executive summary generated")
	return Summary{Markdown: text, Provider: g.Provider.Name()}
}

func (g *Generator) ask(ctx context.Context, in *Inputs) (string, error) {
	prompt, err := BuildPrompt(in)
	if err != nil {
		return "", err
	}
	resp, err := g.Provider.GenerateResponse(ctx, prompt, SystemPrompt, nil)
	if err != nil {
		return "", err
	}
	text := utils.CleanMarkdown(resp)
	if !utils.ValidateMarkdown(text) {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}
