// Package stack drives the Pulumi automation API for webfleet deployments.
// State lives in a local file backend under the user's home directory; the
// assembly program runs inline, so no external language runtime is needed.
package stack

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/common/workspace"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/spf13/afero"
	"github.com/webfleet/webfleet/pkg/config"
	"github.com/webfleet/webfleet/pkg/infra"
	"github.com/webfleet/webfleet/pkg/logging"
	"go.uber.org/zap"
)

const projectName = "webfleet"

// Reference identifies one deployment: the stack name and the spec it
// should converge to.
type Reference struct {
	Name string
	Spec config.Spec
}

func Initialize(ctx context.Context, fs afero.Fs, stackName string) (auto.Stack, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return auto.Stack{}, fmt.Errorf("failed to get user home directory: %w", err)
	}
	pulumiHomeDir := filepath.Join(homeDir, ".webfleet", "pulumi")

	if exists, err := afero.DirExists(fs, pulumiHomeDir); !exists || err != nil {
		if err := fs.MkdirAll(pulumiHomeDir, 0755); err != nil {
			return auto.Stack{}, fmt.Errorf("failed to create pulumi home directory: %w", err)
		}
	}

	stateDir := filepath.Join(pulumiHomeDir, "state")
	if exists, err := afero.DirExists(fs, stateDir); !exists || err != nil {
		if err := fs.MkdirAll(stateDir, 0755); err != nil {
			return auto.Stack{}, fmt.Errorf("failed to create stack state directory: %w", err)
		}
	}

	proj := auto.Project(workspace.Project{
		Name:    tokens.PackageName(projectName),
		Runtime: workspace.NewProjectRuntimeInfo("go", nil),
		Backend: &workspace.ProjectBackend{
			URL: "file://" + stateDir,
		},
	})
	secretsProvider := auto.SecretsProvider("passphrase")
	envvars := auto.EnvVars(map[string]string{
		"PULUMI_CONFIG_PASSPHRASE": "",
	})

	program := func(pctx *pulumi.Context) error { return infra.Program(pctx) }
	stack, err := auto.UpsertStackInlineSource(ctx, stackName, projectName, program,
		proj, envvars, auto.PulumiHome(pulumiHomeDir), secretsProvider)
	if err != nil {
		return auto.Stack{}, fmt.Errorf("failed to create or select stack: %w", err)
	}
	return stack, nil
}

// configure pushes the spec into stack configuration. Credentials go in as
// secret values so the file backend never holds them in the clear.
func configure(ctx context.Context, s auto.Stack, spec config.Spec) error {
	if err := s.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: spec.Region}); err != nil {
		return fmt.Errorf("failed to set stack configuration: %w", err)
	}
	plain, secret := spec.StackValues()
	for key, value := range plain {
		if err := s.SetConfig(ctx, key, auto.ConfigValue{Value: value}); err != nil {
			return fmt.Errorf("failed to set stack configuration %s: %w", key, err)
		}
	}
	for key, value := range secret {
		if err := s.SetConfig(ctx, key, auto.ConfigValue{Value: value, Secret: true}); err != nil {
			return fmt.Errorf("failed to set stack configuration %s: %w", key, err)
		}
	}
	return nil
}

func RunUp(ctx context.Context, fs afero.Fs, ref Reference) (*auto.UpResult, *State, error) {
	log := logging.GetLogger(ctx).Named("pulumi.up").Sugar()

	s, err := Initialize(ctx, fs, ref.Name)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("Created/Selected stack %q", ref.Name)

	if err := configure(ctx, s, ref.Spec); err != nil {
		return nil, nil, err
	}

	log.Debug("Starting update")

	progress := logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel)
	upResult, err := s.Up(
		ctx,
		optup.ProgressStreams(progress),
		optup.Refresh(),
	)
	progress.Flush()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update stack: %w", err)
	}

	log.Infof("Successfully deployed stack %s", ref.Name)

	stackState, err := GetState(ctx, s)
	return &upResult, &stackState, err
}

func RunPreview(ctx context.Context, fs afero.Fs, ref Reference) (*auto.PreviewResult, error) {
	log := logging.GetLogger(ctx).Named("pulumi.preview").Sugar()

	s, err := Initialize(ctx, fs, ref.Name)
	if err != nil {
		return nil, err
	}
	log.Debugf("Created/Selected stack %q", ref.Name)

	if err := configure(ctx, s, ref.Spec); err != nil {
		return nil, err
	}

	log.Debug("Starting preview")

	progress := logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel)
	previewResult, err := s.Preview(
		ctx,
		optpreview.ProgressStreams(progress),
		optpreview.Refresh(),
	)
	progress.Flush()
	if err != nil {
		// the first line carries the cause, the rest repeats the live output
		firstLine := strings.Split(err.Error(), "\n")[0]
		return nil, fmt.Errorf("failed to preview stack: %s", firstLine)
	}

	log.Infof("Successfully previewed stack %s", ref.Name)

	return &previewResult, nil
}

func RunDown(ctx context.Context, fs afero.Fs, ref Reference) error {
	log := logging.GetLogger(ctx).Named("pulumi.destroy").Sugar()

	s, err := Initialize(ctx, fs, ref.Name)
	if err != nil {
		return err
	}
	log.Debugf("Created/Selected stack %q", ref.Name)

	if err := configure(ctx, s, ref.Spec); err != nil {
		return err
	}

	log.Debug("Starting destroy")

	progress := logging.NewLoggerWriter(log.Desugar(), zap.InfoLevel)
	_, err = s.Destroy(
		ctx,
		optdestroy.ProgressStreams(progress),
		optdestroy.Refresh(),
	)
	progress.Flush()
	if err != nil {
		return fmt.Errorf("failed to destroy stack: %w", err)
	}

	log.Infof("Successfully destroyed stack %s", ref.Name)

	log.Infof("Removing stack %s", ref.Name)
	if err := s.Workspace().RemoveStack(ctx, ref.Name); err != nil {
		return fmt.Errorf("failed to remove stack: %w", err)
	}
	return nil
}
