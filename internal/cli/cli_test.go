package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/audioscribe.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/audioscribe.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantArg  string
		wantHelp bool
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing output handler",
			args:    []string{"--output"},
			wantErr: "requires a handler name",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "run command",
			args:    []string{"run"},
			wantCmd: CommandRun,
		},
		{
			name:    "press with key",
			args:    []string{"press", "scroll_lock"},
			wantCmd: CommandPress,
			wantArg: "scroll_lock",
		},
		{
			name:    "release without key",
			args:    []string{"release"},
			wantCmd: CommandRelease,
		},
		{
			name:    "file requires a path",
			args:    []string{"file"},
			wantErr: "requires a WAV path",
		},
		{
			name:    "file with path",
			args:    []string{"file", "/tmp/clip.wav"},
			wantCmd: CommandFile,
			wantArg: "/tmp/clip.wav",
		},
		{
			name:    "text requires an argument",
			args:    []string{"text"},
			wantErr: "requires a text argument",
		},
		{
			name:    "text with trailing arg rejected",
			args:    []string{"text", "hello", "world"},
			wantErr: "unexpected arguments",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantArg, parsed.Arg)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestParseFlagsAroundCommand(t *testing.T) {
	parsed, err := Parse([]string{"--no-llm", "file", "/tmp/clip.wav", "--output", "console"})
	require.NoError(t, err)
	require.Equal(t, CommandFile, parsed.Command)
	require.Equal(t, "/tmp/clip.wav", parsed.Arg)
	require.Equal(t, "console", parsed.Output)
	require.True(t, parsed.NoLLM)
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("audioscribe")
	require.Contains(t, text, "run")
	require.Contains(t, text, "press")
	require.Contains(t, text, "toggle")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
	require.Contains(t, text, "--no-llm")
}
