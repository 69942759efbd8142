// Package llmfactory creates LLM models from provider configuration,
// supporting OpenAI, Anthropic, GoogleAI and Bedrock providers.
package llmfactory
