package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewModelCallbacks wraps the chat-model observer into one callbacks.Handler.
// Attach it via compose.WithCallbacks(...) when invoking a runnable.
func NewModelCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Handler()
}

// NewPromptCallbacks logs template variables and rendered output.
func NewPromptCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Prompt(newPromptHandler()).
		Handler()
}
