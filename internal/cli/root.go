package cli

import (
	"github.com/homilybuild/homily/internal/config"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the services and settings CLI commands run against.
type App struct {
	Homilies service.HomilyService
	Contexts service.ContextService
	Settings service.SettingsService
	Wizards  service.WizardService
	Archives service.ArchiveService

	Config config.Config
	Logger *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Forms, the
	// full-screen wizard and colored markdown are used only when it returns
	// true.
	IsInteractive func() bool

	// LLM is probed for reachability when the server starts. Nil when no
	// provider is configured.
	LLM llm.LLMClient
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// NewRootCmd creates the top-level "homily" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "homily",
		Short:         "Draft homilies step by step with an AI assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.Config.DevOwnerID, "owner", app.Config.DevOwnerID, "Owner id the commands act for")

	root.AddCommand(
		newServeCmd(app),
		newHomilyCmd(app),
		newWizardCmd(app),
		newContextCmd(app),
		newSettingsCmd(app),
		newTemplateCmd(),
		newDashboardCmd(app),
		newBackupCmd(app),
		newRestoreCmd(app),
	)
	return root
}

func (a *App) owner() string {
	return a.Config.DevOwnerID
}
