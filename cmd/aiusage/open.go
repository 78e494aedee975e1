package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"aiusage/internal/config"
	"aiusage/internal/record"
	"aiusage/internal/store"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open the source of an interaction in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			st := store.Open(cfg.StorePath, cfg.MaxInteractions, newLogger(verbose))

			in, ok := st.Get(args[0])
			if !ok {
				return fmt.Errorf("interaction not found: %s", args[0])
			}

			path, line := sourceOf(in)
			if path == "" {
				return fmt.Errorf("interaction %s has no source file", in.ID)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("file not found: %s", path)
			}

			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "less"
			}
			return openInEditor(editor, path, line)
		},
	}
}

// sourceOf resolves the file and line an interaction points at. Completions
// carry a document locator and line, chat turns carry the transcript file
// in metadata.
func sourceOf(in record.Interaction) (string, int) {
	if in.Kind == record.KindChat {
		return in.Metadata["sourceFile"], 1
	}
	line := in.LineNumber
	if line < 1 {
		line = 1
	}
	return in.SourceLocator, line
}

func openInEditor(editor, filePath string, lineNum int) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
