// Package tags applies Finder labels through the macOS `tag` CLI.
// Tag application runs post-rename only and its failures never affect the
// rename of record.
package tags

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"nameforge/internal/core"
)

// callTimeout bounds each `tag` invocation.
const callTimeout = 10 * time.Second

// CLITagger shells out to the `tag` command (brew install tag).
type CLITagger struct{}

var _ core.Tagger = (*CLITagger)(nil)

func NewCLITagger() *CLITagger { return &CLITagger{} }

// Available reports whether the `tag` binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("tag")
	return err == nil
}

// ApplyTags adds or sets tags on a file. Append mode uses `tag --add`,
// replace mode `tag --set`.
func (t *CLITagger) ApplyTags(ctx context.Context, path string, tagList []string, mode core.TagMode) error {
	if len(tagList) == 0 {
		return nil
	}

	flag := "--add"
	if mode == core.TagModeReplace {
		flag = "--set"
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tag", flag, joinTags(tagList), path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("applying tags to %s: %s", path, msg)
	}
	return nil
}

// joinTags builds the comma-separated tag argument. Commas inside a tag
// would act as separators, so they are replaced with spaces first.
func joinTags(tagList []string) string {
	clean := make([]string, 0, len(tagList))
	for _, t := range tagList {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

// NewTaggerFromAvailability returns a CLITagger when the `tag` binary is
// installed, otherwise a NopTagger.
func NewTaggerFromAvailability() core.Tagger {
	if Available() {
		return NewCLITagger()
	}
	return core.NopTagger{}
}
