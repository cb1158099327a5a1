package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Project func(ProjectArgs) (Result, error)
	Toggle  func(TaskArgs) (Result, error)
	Start   func(TaskArgs) (Result, error)
	Stop    func() (Result, error)
	Theme   func(ThemeArgs) (Result, error)
	Refresh func() (Result, error)
	All     func() (Result, error)
	View    func(ViewArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeProject:
		if handlers.Project == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Project(*cmd.Project)
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Toggle(*cmd.Toggle)
	case TypeStart:
		if handlers.Start == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Start(*cmd.Start)
	case TypeStop:
		if handlers.Stop == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Stop()
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	case TypeAll:
		if handlers.All == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.All()
	case TypeView:
		if handlers.View == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.View(*cmd.View)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
