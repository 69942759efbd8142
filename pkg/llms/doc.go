// Package llms provides unified support for interacting with Language Models (LLMs) from various providers.
//
// Each subpackage includes a provider-specific implementation of the Model interface:
// googleai (Gemini), openai, anthropic and bedrock.
//
// The `llms.go` file contains the types and interfaces for interacting with different LLMs.
//
// The `options.go` file provides various options and functions to configure the LLM calls.
package llms
