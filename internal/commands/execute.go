package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add       func(AddArgs) (Result, error)
	Toggle    func(TargetArgs) (Result, error)
	Delete    func(TargetArgs) (Result, error)
	Breakdown func(TargetArgs) (Result, error)
	Find      func(FindArgs) (Result, error)
	Tag       func(TagArgs) (Result, error)
	Refresh   func() (Result, error)
	Remind    func() (Result, error)
	Sound     func(SoundArgs) (Result, error)
	Help      func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeToggle, TypeDelete, TypeBreakdown:
		var h func(TargetArgs) (Result, error)
		switch cmd.Type {
		case TypeToggle:
			h = handlers.Toggle
		case TypeDelete:
			h = handlers.Delete
		default:
			h = handlers.Breakdown
		}
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h(*cmd.Target)
	case TypeFind:
		if handlers.Find == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Find(*cmd.Find)
	case TypeTag:
		if handlers.Tag == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Tag(*cmd.Tag)
	case TypeSound:
		if handlers.Sound == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Sound(*cmd.Sound)
	case TypeRefresh, TypeRemind, TypeHelp:
		var h func() (Result, error)
		switch cmd.Type {
		case TypeRefresh:
			h = handlers.Refresh
		case TypeRemind:
			h = handlers.Remind
		default:
			h = handlers.Help
		}
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		return h()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

// Usage lists the palette commands for the help overlay.
func Usage() []string {
	return []string{
		"add <title> [#tag] [due:<when>]",
		"toggle <n|id>",
		"delete <n|id>",
		"breakdown <n|id>",
		"find [text]",
		"tag [name]",
		"refresh",
		"remind",
		"sound on|off",
		"help",
	}
}
