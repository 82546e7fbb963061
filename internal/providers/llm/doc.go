/*
Package llm routes chat requests to language model providers.

An operator is a user-selectable model ("claude-sonnet", "gpt-4", ...)
served by a provider family. The Router looks up the operator, reads the
family's API key from a CredentialSource and hands a provider-neutral
Request to the registered adapter. Adapters live in subpackages and share
one Client, which layers retries, sonic JSON and a per-family circuit
breaker over resty.

	client := llm.NewClient(llm.DefaultClientConfig())
	router := llm.NewRouter(settingsStore)
	router.Register(anthropic.New(client, ""))
	router.Register(openai.New(llm.FamilyOpenAI, client, ""))

	reply, err := router.SendChat(ctx, "claude-sonnet", "hello", history)
*/
package llm
