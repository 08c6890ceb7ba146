// Package generate asks a language model for concepts related to a word and
// for short explanations of words.
//
// The network service depends only on the [Generator] interface. The
// production implementation, [ChatGenerator], drives any eino chat model; by
// default an OpenAI-compatible one built from [Config]:
//
//	gen, err := generate.NewChatGenerator(ctx, generate.Config{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-5-mini",
//	})
//	concepts, err := gen.Related(ctx, generate.RelatedRequest{Word: "rose"})
//
// # Prompts
//
// Prompt templates use {name} placeholders. The related-words template can be
// replaced by a generate-words.txt file in a prompts directory, see
// [LoadPrompts].
//
// # Responses
//
// Models are asked for JSON but replies are parsed tolerantly: code fences
// are stripped and the first JSON object in the reply is decoded. At most
// [MaxConcepts] concepts are returned; blank and duplicate words are dropped.
package generate
