// Package cli parses command-line arguments for the audioscribe binary.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandPress   Command = "press"
	CommandRelease Command = "release"
	CommandToggle  Command = "toggle"
	CommandStatus  Command = "status"
	CommandStop    Command = "stop"
	CommandFile    Command = "file"
	CommandText    Command = "text"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandPress:   {},
	CommandRelease: {},
	CommandToggle:  {},
	CommandStatus:  {},
	CommandStop:    {},
	CommandFile:    {},
	CommandText:    {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// argCommands take exactly one positional argument after the command.
var argCommands = map[Command]string{
	CommandFile: "a WAV path",
	CommandText: "a text argument",
}

// keyCommands take an optional key name after the command.
var keyCommands = map[Command]struct{}{
	CommandPress:   {},
	CommandRelease: {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	Output     string
	NoLLM      bool
	Arg        string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	seenCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--no-llm":
			parsed.NoLLM = true
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--output":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--output requires a handler name")
			}
			parsed.Output = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if seenCommand {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			seenCommand = true

			if want, ok := argCommands[cmd]; ok {
				i++
				if i >= len(args) {
					return Parsed{}, fmt.Errorf("%s requires %s", cmd, want)
				}
				parsed.Arg = args[i]
			} else if _, ok := keyCommands[cmd]; ok && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				parsed.Arg = args[i]
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--output NAME] [--no-llm] <command>

Commands:
  run            Start the dictation daemon
  press [KEY]    Forward a hotkey press to the running daemon
  release [KEY]  Forward a hotkey release to the running daemon
  toggle         Start or stop recording in the running daemon
  status         Print daemon state and chain statistics
  stop           Ask the running daemon to shut down
  file PATH      Transcribe a WAV file and print the result
  text TEXT      Run text through the enhancement chain
  devices        List available input devices
  doctor         Run configuration and environment checks
  version        Print version information
  help           Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/audioscribe/config.yaml)
  --output NAME   Deliver file/text results via clipboard, type, file, or console
  --no-llm        Skip the enhancement chain for this invocation
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
