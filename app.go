package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	dbsqlite "github.com/david-geiger/knowthelist/internal/adapters/db/sqlite"
	llmfactory "github.com/david-geiger/knowthelist/internal/adapters/llm/factory"
	llmregistry "github.com/david-geiger/knowthelist/internal/adapters/llm/registry"
	promptrenderer "github.com/david-geiger/knowthelist/internal/adapters/prompt"
	apiapp "github.com/david-geiger/knowthelist/internal/api/app"
	"github.com/david-geiger/knowthelist/internal/config"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/log"
	"github.com/david-geiger/knowthelist/internal/ports"
	exporterusecase "github.com/david-geiger/knowthelist/internal/usecase/exporter"
	"github.com/david-geiger/knowthelist/internal/usecase/importer"
	jobsusecase "github.com/david-geiger/knowthelist/internal/usecase/jobs"
	translatorusecase "github.com/david-geiger/knowthelist/internal/usecase/translator"
	"github.com/sirupsen/logrus"
)

// App holds the configured services. The workbench database is opened on
// first use so file-only commands work without it.
type App struct {
	Config *config.AppConfig
	Log    *logrus.Entry
	Stdout io.Writer

	Lookup    *apiapp.LookupAPI
	Providers *apiapp.ProviderAPI

	db           *sql.DB
	Projects     *apiapp.ProjectAPI
	Files        *apiapp.FileAPI
	Units        *apiapp.UnitAPI
	Imports      *apiapp.ImportAPI
	Exports      *apiapp.ExportAPI
	Translations *apiapp.TranslationsAPI
	Jobs         *apiapp.JobsAPI
}

func NewApp(cfg *config.AppConfig, stdout, stderr io.Writer) (*App, error) {
	app := &App{Config: cfg, Stdout: stdout}
	app.Log = log.NewLogger(cfg, stderr)

	var opts []catalog.Option
	if cfg.UserConfig.Lookup.IncludeUnfinished {
		opts = append(opts, catalog.WithUnfinished())
	}
	app.Lookup = apiapp.NewLookupAPI(catalog.NewBundle(opts...))

	reg, err := llmregistry.Build(cfg.UserConfig.Providers, app.buildProvider)
	if err != nil {
		return nil, err
	}
	app.Providers = apiapp.NewProviderAPI(cfg.UserConfig.Providers, reg)
	return app, nil
}

func (app *App) buildProvider(p *domain.Provider) (ports.Provider, error) {
	return llmfactory.FromProvider(p, app.Config.UserConfig.Jobs.HTTPTimeout)
}

// openWorkbench opens the database and wires the services that use it.
func (app *App) openWorkbench() error {
	if app.db != nil {
		return nil
	}
	uc := app.Config.UserConfig
	db, err := dbsqlite.Init(uc.Database)
	if err != nil {
		return fmt.Errorf("open workbench %s: %w", uc.Database, err)
	}
	app.db = db
	store := dbsqlite.NewStore(db)
	repos := store.Repositories()

	app.Projects = apiapp.NewProjectAPI(repos.Projects)
	app.Files = apiapp.NewFileAPI(repos.Files)
	app.Units = apiapp.NewUnitAPI(repos.Units)
	app.Translations = apiapp.NewTranslationsAPI(repos.Translations, repos.Units)
	app.Imports = apiapp.NewImportAPI(importer.New(store, apiapp.NewDefaultParserRegistry(), app.Log))
	app.Exports = apiapp.NewExportAPI(exporterusecase.New(repos.Projects, repos.Files, repos.Units, repos.Translations, apiapp.NewDefaultExporterRegistry()))

	transSvc := translatorusecase.New(translatorusecase.Deps{
		Providers:     uc.Providers,
		Cache:         repos.Cache,
		Prompt:        promptrenderer.New(uc.Prompts),
		BuildProvider: app.buildProvider,
		Log:           app.Log,
	})
	runner := jobsusecase.NewRunner(jobsusecase.Deps{
		Jobs:          repos.Jobs,
		Projects:      repos.Projects,
		Files:         repos.Files,
		Units:         repos.Units,
		Translations:  repos.Translations,
		Providers:     uc.Providers,
		BuildProvider: app.buildProvider,
		Log:           app.Log,
		ItemTimeout:   uc.Jobs.ItemTimeout,
	}, transSvc)
	runner.SetEmitter(consoleEmitter{log: app.Log, out: app.Stdout})
	app.Jobs = apiapp.NewJobsAPI(runner, repos.Jobs)
	return nil
}

// Close stops running jobs before the database goes away.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	if err := app.Jobs.Shutdown(context.Background()); err != nil {
		app.Log.WithError(err).Warn("stopping jobs")
	}
	return app.db.Close()
}

// consoleEmitter prints job progress and logs every event at debug level.
type consoleEmitter struct {
	log *logrus.Entry
	out io.Writer
}

func (c consoleEmitter) Emit(name string, payload any) {
	fields, _ := payload.(map[string]any)
	c.log.WithField("event", name).WithFields(logrus.Fields(fields)).Debug("job event")
	switch name {
	case "job.item.done":
		if msg, ok := fields["error"]; ok {
			key := strings.ReplaceAll(fmt.Sprint(fields["key"]), linguist.KeySeparator, " / ")
			fmt.Fprintf(c.out, "  %s [%v]: %v\n", key, fields["locale"], msg)
		}
	case "job.progress":
		status := fields["status"]
		if status == domain.JobRunning {
			return
		}
		fmt.Fprintf(c.out, "job %v %v: %v/%v\n", fields["job_id"], status, fields["done"], fields["total"])
	}
}
