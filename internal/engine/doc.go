// Package engine provides the generation engines driven by the bridge.
//
// An engine turns a prompt into a lazy sequence of cumulative snapshots: each
// value yielded is everything generated so far and extends the previous one.
// Every call to Snapshots starts an independent generation; an engine failure
// is yielded once as ("", err) and ends the sequence.
//
// Implementations:
//
//   - echo.go: Echo repeats the prompt word by word. No dependencies; default.
//   - scripted.go: Scripted replays a fixed list of snapshots (demos, tests).
//   - llama.go: in-process llama.cpp via go-llama.cpp. Enabled with `-tags=llama`;
//     llama_stub.go reports the dependency as unavailable otherwise.
//   - openai.go: OpenAI Chat Completions streaming.
//   - anthropic.go: Anthropic Messages streaming.
//
// Token-oriented backends produce deltas; Accumulate folds them into snapshots.
package engine
