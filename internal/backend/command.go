package backend

import "github.com/atomicstack/qmf-explorer/internal/qmf"

// CommandKind distinguishes the user intents the worker understands.
type CommandKind int

const (
	CommandConnect CommandKind = iota
	CommandDisconnect
	CommandFilter
)

func (k CommandKind) String() string {
	switch k {
	case CommandConnect:
		return "connect"
	case CommandDisconnect:
		return "disconnect"
	case CommandFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// Command is one queued user intent. Commands are values and are not
// modified after they are enqueued.
type Command struct {
	Kind              CommandKind
	URL               string
	ConnectionOptions string
	SessionOptions    string
	Filter            string
}

// ConnectCommand asks the worker to open a session to url.
func ConnectCommand(url, connectionOptions, sessionOptions string) Command {
	return Command{
		Kind:              CommandConnect,
		URL:               url,
		ConnectionOptions: connectionOptions,
		SessionOptions:    sessionOptions,
	}
}

// LocalhostCommand is the "open localhost" menu action.
func LocalhostCommand() Command {
	return ConnectCommand("localhost", "", qmf.DefaultSessionOptions)
}

// DisconnectCommand asks the worker to close the current session.
func DisconnectCommand() Command {
	return Command{Kind: CommandDisconnect}
}

// FilterCommand asks the worker to apply a live agent filter.
func FilterCommand(expr string) Command {
	return Command{Kind: CommandFilter, Filter: expr}
}
