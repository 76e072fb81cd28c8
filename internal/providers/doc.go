// Package providers implements the LLM-backed research capabilities (query
// generation, learning extraction, report synthesis) on top of langchaingo.
//
// Provider selection happens exactly once, at construction: New builds a
// single llms.Model for the configured provider (openai, googleai or
// anthropic) and returns a Suite that implements research.QueryGenerator,
// research.Extractor and research.Reporter over it. The research loop never
// sees provider-specific branching.
//
// All structured calls use a JSON contract: the model is asked for a JSON
// object and the response is parsed defensively, tolerating markdown fences
// and surrounding prose. Report synthesis streams markdown fragments through
// the caller's chunk callback via llms.WithStreamingFunc.
//
// Calls are rate limited with a shared token bucket so a deep run with many
// rounds stays within API quotas.
package providers
