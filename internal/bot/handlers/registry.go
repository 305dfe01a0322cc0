package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
// It configures each command with appropriate handlers and middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(name string, handler tgbot.HandlerFunc) {
		handlers["/"+name] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     name,
			Handler:     handler,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	command("start", NewStartHandler(deps))
	command("help", NewHelpHandler(deps))
	command("subscribe", NewSubscribeHandler(deps))
	command("unsubscribe", NewUnsubscribeHandler(deps))
	command("status", NewStatusHandler(deps))
	command("cycles", NewCyclesHandler(deps))
	command("sortie", NewSortieHandler(deps))
	command("baro", NewBaroHandler(deps))
	command("invasions", NewInvasionsHandler(deps))
	command("search", NewSearchHandler(deps))

	handlers["/announce"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "announce",
		Handler:     NewAnnounceHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  []tgbot.Middleware{AdminOnly(deps)},
	}

	// Inline keyboard callbacks share one handler; the prefixes match the
	// callback data set by the menu keyboards.
	callback := NewCallbackHandler(deps)
	for _, prefix := range []string{"cmd_", "cycle_", "sub_"} {
		handlers["callback:"+prefix] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeCallbackQueryData,
			Pattern:     prefix,
			Handler:     callback,
			MatchType:   tgbot.MatchTypePrefix,
		}
	}

	return handlers
}
