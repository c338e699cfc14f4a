package compose

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/sirupsen/logrus"
)

// warningHook captures warning messages from logrus
type warningHook struct {
	warnings []string
}

func (h *warningHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.WarnLevel}
}

func (h *warningHook) Fire(entry *logrus.Entry) error {
	h.warnings = append(h.warnings, entry.Message)
	return nil
}

// lintMu serializes lint runs, which swap the global logrus hooks and output
var lintMu sync.Mutex

// LintResult is what the compose-go loader thinks of a document
type LintResult struct {
	Valid    bool     `json:"valid"`
	Services []string `json:"services,omitempty"`
	Volumes  []string `json:"volumes,omitempty"`
	Networks []string `json:"networks,omitempty"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Lint loads the document with the compose-go loader and reports its errors and the
// warnings compose-go logs while loading. Environment files and includes are not read.
func Lint(ctx context.Context, composeContent string) *LintResult {
	lintMu.Lock()
	defer lintMu.Unlock()

	hook := &warningHook{warnings: []string{}}

	originalLevel := logrus.GetLevel()
	originalHooks := logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	originalOutput := logrus.StandardLogger().Out

	logrus.SetLevel(logrus.WarnLevel)
	logrus.SetOutput(io.Discard)
	logrus.AddHook(hook)

	defer func() {
		logrus.SetLevel(originalLevel)
		logrus.SetOutput(originalOutput)
		logrus.StandardLogger().ReplaceHooks(originalHooks)
	}()

	project, err := loader.LoadWithContext(
		ctx,
		types.ConfigDetails{
			ConfigFiles: []types.ConfigFile{
				{
					Filename: "docker-compose.yml",
					Content:  []byte(composeContent),
				},
			},
			WorkingDir: os.TempDir(),
		},
		func(o *loader.Options) {
			o.SetProjectName("composer", true)
			o.SkipResolveEnvironment = true
			o.SkipInclude = true
		},
	)

	result := &LintResult{
		Valid:    err == nil,
		Errors:   []string{},
		Warnings: hook.warnings,
	}
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Services = project.ServiceNames()
	result.Volumes = project.VolumeNames()
	result.Networks = project.NetworkNames()
	sort.Strings(result.Services)
	sort.Strings(result.Volumes)
	sort.Strings(result.Networks)
	return result
}
