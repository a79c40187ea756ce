package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apiapp "github.com/david-geiger/knowthelist/internal/api/app"
	"github.com/david-geiger/knowthelist/internal/config"
	"github.com/david-geiger/knowthelist/internal/domain"
	"github.com/david-geiger/knowthelist/internal/linguist"
	"github.com/david-geiger/knowthelist/internal/linguist/catalog"
	"github.com/david-geiger/knowthelist/internal/utils"
	"github.com/fatih/color"
	"github.com/integrii/flaggy"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type command struct {
	sc *flaggy.Subcommand
	// workbench commands need the database.
	workbench bool
	run       func(ctx context.Context, app *App) error
}

func (c *command) exec(stdout, stderr io.Writer) error {
	cfg, err := config.NewAppConfig("knowthelist", version, debuggingFlag)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer app.Close()
	if c.workbench {
		if err := app.openWorkbench(); err != nil {
			return err
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.run(ctx, app)
}

func newCommands() []*command {
	return []*command{
		lookupCommand(),
		validateCommand(),
		fmtCommand(),
		statsCommand(),
		importCommand(),
		exportCommand(),
		translateCommand(),
		projectsCommand(),
		filesCommand(),
		unitsCommand(),
		reviewCommand(),
		setCommand(),
		jobsCommand(),
		providersCommand(),
		configCommand(),
	}
}

func readDocument(path string) (*linguist.Document, []byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := linguist.Unmarshal(b)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, b, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func printTable(w io.Writer, rows [][]string) error {
	out, err := utils.RenderTable(rows)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
	return nil
}

func lookupCommand() *command {
	sc := flaggy.NewSubcommand("lookup")
	sc.Description = "Translate one message the way the running application would"
	var ctxName, source, locale, comment, dir, prefix string
	count := -1
	sc.AddPositionalValue(&ctxName, "context", 1, true, "Message context, e.g. Playlist")
	sc.AddPositionalValue(&source, "source", 2, true, "Source text, e.g. Artist")
	sc.String(&locale, "l", "locale", "Locale to translate into (default from config)")
	sc.String(&comment, "c", "comment", "Disambiguation comment")
	sc.String(&dir, "", "dir", "Catalog directory (default from config)")
	sc.String(&prefix, "", "prefix", "Catalog file prefix (default from config)")
	sc.Int(&count, "n", "count", "Pick the numerus form for this count")

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		uc := app.Config.UserConfig
		if dir == "" {
			dir = uc.Lookup.Dir
		}
		if prefix == "" {
			prefix = uc.Lookup.Prefix
		}
		if locale == "" {
			locale = uc.ResolveLocale()
		}
		if _, err := app.Lookup.Load(dir, prefix); err != nil {
			return err
		}
		req := apiapp.LookupRequest{Locale: locale, Context: ctxName, Source: source, Comment: comment}
		if count >= 0 {
			req.N = &count
		}
		res, err := app.Lookup.Lookup(req)
		if err != nil {
			return err
		}
		app.Log.WithField("catalog", res.Catalog).WithField("found", res.Found).Debug("lookup")
		fmt.Fprintln(app.Stdout, res.Text)
		return nil
	}}
}

func validateCommand() *command {
	sc := flaggy.NewSubcommand("validate")
	sc.Description = "Check a .ts file for structural problems"
	var path string
	sc.AddPositionalValue(&path, "file", 1, true, "TS file")

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		doc, _, err := readDocument(path)
		if err != nil {
			return err
		}
		rep := linguist.Validate(doc)
		for _, issue := range rep.Issues {
			line := issue.String()
			if issue.Severity == linguist.SeverityError {
				line = utils.ColoredString(line, color.FgRed)
			} else {
				line = utils.ColoredString(line, color.FgYellow)
			}
			fmt.Fprintln(app.Stdout, line)
		}
		fmt.Fprintf(app.Stdout, "%s: %d messages, %d errors, %d warnings\n", path, doc.Len(), len(rep.Errors()), len(rep.Warnings()))
		if !rep.OK() {
			return exitCode(1)
		}
		return nil
	}}
}

func fmtCommand() *command {
	sc := flaggy.NewSubcommand("fmt")
	sc.Description = "Rewrite a .ts file in canonical lupdate layout"
	var path string
	var check, write bool
	sc.AddPositionalValue(&path, "file", 1, true, "TS file")
	sc.Bool(&check, "", "check", "Print a diff and fail when the file is not canonical")
	sc.Bool(&write, "w", "write", "Write the result back to the file")

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		doc, orig, err := readDocument(path)
		if err != nil {
			return err
		}
		canonical, err := linguist.Marshal(doc)
		if err != nil {
			return err
		}
		switch {
		case check:
			if bytes.Equal(orig, canonical) {
				return nil
			}
			diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(orig)),
				B:        difflib.SplitLines(string(canonical)),
				FromFile: path,
				ToFile:   path + " (formatted)",
				Context:  3,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(app.Stdout, diff)
			return exitCode(1)
		case write:
			if bytes.Equal(orig, canonical) {
				return nil
			}
			return os.WriteFile(path, canonical, 0o644)
		default:
			_, err := app.Stdout.Write(canonical)
			return err
		}
	}}
}

func statsCommand() *command {
	sc := flaggy.NewSubcommand("stats")
	sc.Description = "Count finished, unfinished and obsolete messages per context"
	var path string
	var asYAML bool
	sc.AddPositionalValue(&path, "file", 1, true, "TS file")
	sc.Bool(&asYAML, "", "yaml", "Print the counts as YAML")

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		doc, _, err := readDocument(path)
		if err != nil {
			return err
		}
		st := doc.Stats()
		if asYAML {
			return printYAML(app.Stdout, st)
		}
		rows := [][]string{{"context", "finished", "unfinished", "obsolete", "done"}}
		for _, c := range st.Contexts {
			rows = append(rows, countsRow(c.Name, c.Counts))
		}
		rows = append(rows, countsRow("total ("+st.Language+")", st.Counts))
		return printTable(app.Stdout, rows)
	}}
}

func countsRow(name string, c linguist.Counts) []string {
	return []string{
		name,
		strconv.Itoa(c.Finished),
		strconv.Itoa(c.Unfinished),
		strconv.Itoa(c.Obsolete),
		fmt.Sprintf("%.0f%%", c.Progress()*100),
	}
}

func importCommand() *command {
	sc := flaggy.NewSubcommand("import")
	sc.Description = "Store a catalog in the workbench"
	var path, project, locale, format string
	sc.AddPositionalValue(&path, "file", 1, true, "Catalog file (.ts or .csv)")
	sc.String(&project, "p", "project", "Project name (default: catalog prefix from config)")
	sc.String(&locale, "l", "locale", "Override the language found in the file")
	sc.String(&format, "f", "format", "Input format (default from extension)")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		uc := app.Config.UserConfig
		if project == "" {
			project = uc.Lookup.Prefix
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		p, err := app.Projects.Ensure(ctx, project, uc.SourceLanguage)
		if err != nil {
			return err
		}
		res, err := app.Imports.Import(ctx, apiapp.ImportRequest{ProjectID: p.ID, Filename: path, Format: format, Locale: locale, Content: content})
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "file %d: %d units, %d translations (%s) in project %s\n", res.FileID, res.Units, res.Translations, res.Locale, p.Name)
		return nil
	}}
}

func exportCommand() *command {
	sc := flaggy.NewSubcommand("export")
	sc.Description = "Write a stored file back out"
	var id, locale, format, separator, out string
	var fallback bool
	sc.AddPositionalValue(&id, "file-id", 1, true, "Workbench file id")
	sc.String(&locale, "l", "locale", "Locale to export (default: the file's own)")
	sc.String(&format, "f", "format", "Output format: qtts, csv or lookupjson")
	sc.String(&separator, "", "separator", "CSV separator")
	sc.String(&out, "o", "out", "Output directory, or - for stdout")
	sc.Bool(&fallback, "", "fallback", "Fill untranslated messages with their source text")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		fileID, err := parseID(id, "file")
		if err != nil {
			return err
		}
		res, err := app.Exports.ExportFile(ctx, apiapp.ExportFileRequest{FileID: fileID, Locale: locale, OverrideFormat: format, Fallback: fallback, Separator: separator})
		if err != nil {
			return err
		}
		if out == "-" {
			_, err := app.Stdout.Write(res.Content)
			return err
		}
		if out == "" {
			out = "."
		}
		dest := filepath.Join(out, res.Filename)
		if err := os.WriteFile(dest, res.Content, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(app.Stdout, dest)
		return nil
	}}
}

func translateCommand() *command {
	sc := flaggy.NewSubcommand("translate")
	sc.Description = "Machine-translate the unfinished messages of a stored file"
	var id, provider, model string
	var locales []string
	var units []int64
	var force bool
	sc.AddPositionalValue(&id, "file-id", 1, true, "Workbench file id")
	sc.String(&provider, "p", "provider", "Provider name from config (default: the first one)")
	sc.StringSlice(&locales, "l", "locale", "Target locale; repeat for several (default from config)")
	sc.String(&model, "m", "model", "Model (default: the provider's)")
	sc.Int64Slice(&units, "u", "unit", "Only translate this unit; repeatable")
	sc.Bool(&force, "", "force", "Also retranslate finished messages")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		fileID, err := parseID(id, "file")
		if err != nil {
			return err
		}
		uc := app.Config.UserConfig
		if provider == "" {
			if len(uc.Providers) == 0 {
				return fmt.Errorf("no providers configured in %s", app.Config.ConfigFilename())
			}
			provider = uc.Providers[0].Name
		}
		if len(locales) == 0 {
			locales = []string{uc.ResolveLocale()}
		}
		start, err := app.Jobs.StartTranslate(ctx, apiapp.StartTranslateRequest{Provider: provider, FileID: fileID, UnitIDs: units, Locales: locales, Model: model, Force: force})
		if err != nil {
			return err
		}
		if err := app.Jobs.Wait(ctx, start.JobID); err != nil {
			// interrupted: stop the job and let it record its state
			app.Jobs.Cancel(start.JobID)
			_ = app.Jobs.Wait(context.Background(), start.JobID)
		}
		job, err := app.Jobs.Get(context.Background(), start.JobID)
		if err != nil || job == nil {
			return err
		}
		if job.Status != domain.JobDone {
			return fmt.Errorf("job %d %s after %d/%d items", job.ID, job.Status, job.Progress, job.Total)
		}
		return nil
	}}
}

func projectsCommand() *command {
	sc := flaggy.NewSubcommand("projects")
	sc.Description = "List projects with their target locales"

	rename := flaggy.NewSubcommand("rename")
	rename.Description = "Rename a project"
	var renameID, newName string
	rename.AddPositionalValue(&renameID, "project-id", 1, true, "Project id")
	rename.AddPositionalValue(&newName, "name", 2, true, "New name")
	sc.AttachSubcommand(rename, 1)

	addLocale := flaggy.NewSubcommand("add-locale")
	addLocale.Description = "Register a target locale for a project"
	var addID, addLoc string
	addLocale.AddPositionalValue(&addID, "project-id", 1, true, "Project id")
	addLocale.AddPositionalValue(&addLoc, "locale", 2, true, "Locale, e.g. tr_TR")
	sc.AttachSubcommand(addLocale, 1)

	rm := flaggy.NewSubcommand("rm")
	rm.Description = "Delete a project with its files and translations"
	var rmID string
	rm.AddPositionalValue(&rmID, "project-id", 1, true, "Project id")
	sc.AttachSubcommand(rm, 1)

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		switch {
		case rename.Used:
			id, err := parseID(renameID, "project")
			if err != nil {
				return err
			}
			p, err := app.Projects.Get(ctx, id)
			if err != nil {
				return err
			}
			_, err = app.Projects.Update(ctx, id, newName, p.SourceLang)
			return err
		case addLocale.Used:
			id, err := parseID(addID, "project")
			if err != nil {
				return err
			}
			_, err = app.Projects.AddLocale(ctx, id, addLoc)
			return err
		case rm.Used:
			id, err := parseID(rmID, "project")
			if err != nil {
				return err
			}
			return app.Projects.Delete(ctx, id)
		}
		projects, err := app.Projects.List(ctx)
		if err != nil {
			return err
		}
		rows := [][]string{{"id", "name", "source", "locales"}}
		for _, p := range projects {
			locales, err := app.Projects.ListLocales(ctx, p.ID)
			if err != nil {
				return err
			}
			names := lo.Map(locales, func(l *domain.ProjectLocale, _ int) string { return l.Locale })
			rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, p.SourceLang, strings.Join(names, ",")})
		}
		return printTable(app.Stdout, rows)
	}}
}

func filesCommand() *command {
	sc := flaggy.NewSubcommand("files")
	sc.Description = "List stored files"

	rm := flaggy.NewSubcommand("rm")
	rm.Description = "Delete a file with its units and translations"
	var rmID string
	rm.AddPositionalValue(&rmID, "file-id", 1, true, "File id")
	sc.AttachSubcommand(rm, 1)

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		if rm.Used {
			id, err := parseID(rmID, "file")
			if err != nil {
				return err
			}
			return app.Files.Delete(ctx, id)
		}
		projects, err := app.Projects.List(ctx)
		if err != nil {
			return err
		}
		rows := [][]string{{"file", "project", "locale", "format", "path"}}
		for _, p := range projects {
			files, err := app.Files.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			for _, f := range files {
				rows = append(rows, []string{strconv.FormatInt(f.ID, 10), p.Name, f.Locale, f.Format, f.Path})
			}
		}
		return printTable(app.Stdout, rows)
	}}
}

// fileLocale resolves an empty locale flag to the file's own language.
func fileLocale(ctx context.Context, app *App, fileID int64, locale string) (string, error) {
	if locale != "" {
		return locale, nil
	}
	f, err := app.Files.Get(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("file %d: %w", fileID, err)
	}
	return f.Locale, nil
}

// oneLine keeps table rows on one line each.
func oneLine(s string) string {
	lines := utils.SplitLines(s)
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0]
	}
	return lines[0] + " …"
}

func unitsCommand() *command {
	sc := flaggy.NewSubcommand("units")
	sc.Description = "List the messages of a stored file with their translations"
	var id, locale, status string
	sc.AddPositionalValue(&id, "file-id", 1, true, "Workbench file id")
	sc.String(&locale, "l", "locale", "Translation locale (default: the file's own)")
	sc.String(&status, "s", "status", "Only list this status: final, unfinished, machine, obsolete or none")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		fileID, err := parseID(id, "file")
		if err != nil {
			return err
		}
		if locale, err = fileLocale(ctx, app, fileID, locale); err != nil {
			return err
		}
		texts, err := app.Translations.ListUnitTexts(ctx, fileID, locale)
		if err != nil {
			return err
		}
		if status == "none" {
			status = ""
		} else if status == "" {
			status = "*"
		}
		rows := [][]string{{"unit", "context", "source", "translation", "status"}}
		for _, ut := range texts {
			if status != "*" && ut.Status != status {
				continue
			}
			text := strings.ReplaceAll(ut.Translation, linguist.NumerusSeparator, " | ")
			rows = append(rows, []string{strconv.FormatInt(ut.UnitID, 10), ut.Context, oneLine(ut.Source), oneLine(text), ut.Status})
		}
		return printTable(app.Stdout, rows)
	}}
}

func reviewCommand() *command {
	sc := flaggy.NewSubcommand("review")
	sc.Description = "Accept machine translations as final"
	var id, locale string
	var units []int64
	sc.AddPositionalValue(&id, "file-id", 1, true, "Workbench file id")
	sc.String(&locale, "l", "locale", "Translation locale (default: the file's own)")
	sc.Int64Slice(&units, "u", "unit", "Only accept this unit; repeatable")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		fileID, err := parseID(id, "file")
		if err != nil {
			return err
		}
		if locale, err = fileLocale(ctx, app, fileID, locale); err != nil {
			return err
		}
		n, err := app.Translations.Accept(ctx, fileID, locale, units)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout, "%d machine translations marked final (%s)\n", n, locale)
		return nil
	}}
}

func setCommand() *command {
	sc := flaggy.NewSubcommand("set")
	sc.Description = "Store a translation for one unit"
	var id, text, locale string
	var forms []string
	status := domain.StatusFinal
	sc.AddPositionalValue(&id, "unit-id", 1, true, "Unit id, see the units command")
	sc.AddPositionalValue(&text, "text", 2, false, "Translation")
	sc.String(&locale, "l", "locale", "Translation locale (default: the file's own)")
	sc.String(&status, "s", "status", "final, unfinished, machine or obsolete")
	sc.StringSlice(&forms, "", "form", "Numerus form, in plural order; repeat for each")

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		unitID, err := parseID(id, "unit")
		if err != nil {
			return err
		}
		u, err := app.Units.Get(ctx, unitID)
		if err != nil {
			return err
		}
		switch {
		case u.Numerus && len(forms) == 0:
			return fmt.Errorf("unit %d is numerus: pass each form with --form", unitID)
		case !u.Numerus && len(forms) > 0:
			return fmt.Errorf("unit %d is not numerus", unitID)
		case len(forms) > 0:
			text = strings.Join(forms, linguist.NumerusSeparator)
		}
		if locale, err = fileLocale(ctx, app, u.FileID, locale); err != nil {
			return err
		}
		return app.Translations.Upsert(ctx, apiapp.UpsertTranslationRequest{UnitID: unitID, Locale: locale, Text: text, Status: status})
	}}
}

func jobsCommand() *command {
	sc := flaggy.NewSubcommand("jobs")
	sc.Description = "List translate jobs"
	limit := 20
	sc.Int(&limit, "n", "limit", "Number of jobs to list")

	show := flaggy.NewSubcommand("show")
	show.Description = "Show the failed items and log of a job"
	var showID string
	show.AddPositionalValue(&showID, "job-id", 1, true, "Job id")
	sc.AttachSubcommand(show, 1)

	rm := flaggy.NewSubcommand("rm")
	rm.Description = "Delete a job with its items and log"
	var rmID string
	rm.AddPositionalValue(&rmID, "job-id", 1, true, "Job id")
	sc.AttachSubcommand(rm, 1)

	return &command{sc: sc, workbench: true, run: func(ctx context.Context, app *App) error {
		switch {
		case show.Used:
			jobID, err := parseID(showID, "job")
			if err != nil {
				return err
			}
			items, err := app.Jobs.Items(ctx, jobID)
			if err != nil {
				return err
			}
			rows := [][]string{{"unit", "locale", "error"}}
			for _, it := range items {
				if it.Error != "" {
					rows = append(rows, []string{strconv.FormatInt(it.UnitID, 10), it.Locale, it.Error})
				}
			}
			if err := printTable(app.Stdout, rows); err != nil {
				return err
			}
			logs, err := app.Jobs.Logs(ctx, jobID, 200)
			if err != nil {
				return err
			}
			for _, l := range logs {
				fmt.Fprintf(app.Stdout, "%s %-5s %s\n", l.Time, l.Level, l.Message)
			}
			return nil
		case rm.Used:
			jobID, err := parseID(rmID, "job")
			if err != nil {
				return err
			}
			return app.Jobs.Delete(ctx, jobID)
		}
		jobs, err := app.Jobs.List(ctx, limit)
		if err != nil {
			return err
		}
		rows := [][]string{{"id", "status", "provider", "progress", "updated"}}
		for _, j := range jobs {
			rows = append(rows, []string{strconv.FormatInt(j.ID, 10), j.Status, j.Provider, fmt.Sprintf("%d/%d", j.Progress, j.Total), j.UpdatedAt})
		}
		return printTable(app.Stdout, rows)
	}}
}

func providersCommand() *command {
	sc := flaggy.NewSubcommand("providers")
	sc.Description = "List and check the configured LLM providers"

	test := flaggy.NewSubcommand("test")
	test.Description = "Translate a sample message with a provider"
	var testName, testLocale string
	test.AddPositionalValue(&testName, "name", 1, true, "Provider name")
	test.String(&testLocale, "l", "locale", "Target locale")
	sc.AttachSubcommand(test, 1)

	models := flaggy.NewSubcommand("models")
	models.Description = "List the models a provider offers"
	var modelsName string
	models.AddPositionalValue(&modelsName, "name", 1, true, "Provider name")
	sc.AttachSubcommand(models, 1)

	health := flaggy.NewSubcommand("health")
	health.Description = "Ping every provider"
	sc.AttachSubcommand(health, 1)

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		switch {
		case test.Used:
			res, err := app.Providers.Test(ctx, testName, testLocale)
			if err != nil {
				return err
			}
			if !res.Ok {
				fmt.Fprintln(app.Stdout, utils.ColoredString(res.Error, color.FgRed))
				return exitCode(1)
			}
			fmt.Fprintln(app.Stdout, res.Translation)
			return nil
		case models.Used:
			list, err := app.Providers.ListModels(ctx, modelsName)
			if err != nil {
				return err
			}
			rows := [][]string{{"model", "context", "description"}}
			for _, m := range list {
				rows = append(rows, []string{m.Name, strconv.Itoa(m.ContextTokens), m.Description})
			}
			return printTable(app.Stdout, rows)
		case health.Used:
			rows := [][]string{{"provider", "status"}}
			for name, status := range app.Providers.HealthCheck(ctx) {
				rows = append(rows, []string{name, status})
			}
			return printTable(app.Stdout, sortRows(rows))
		}
		rows := [][]string{{"name", "type", "model", "url", "key"}}
		for _, p := range app.Providers.List() {
			rows = append(rows, []string{p.Name, p.Type, p.Model, p.BaseURL, p.APIKey})
		}
		return printTable(app.Stdout, rows)
	}}
}

// sortRows orders the rows after the header by their first column.
func sortRows(rows [][]string) [][]string {
	body := rows[1:]
	sort.Slice(body, func(i, j int) bool { return body[i][0] < body[j][0] })
	return rows
}

func printYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func configCommand() *command {
	sc := flaggy.NewSubcommand("config")
	sc.Description = "Print the effective config"
	var path, defaults bool
	sc.Bool(&path, "", "path", "Print the config file location instead")
	sc.Bool(&defaults, "", "defaults", "Print the default config")

	setLocale := flaggy.NewSubcommand("locale")
	setLocale.Description = "Save the default locale to the config file"
	var locale string
	setLocale.AddPositionalValue(&locale, "locale", 1, true, "Locale, e.g. cs_CZ, or auto")
	sc.AttachSubcommand(setLocale, 1)

	return &command{sc: sc, run: func(ctx context.Context, app *App) error {
		if setLocale.Used {
			if locale != "auto" {
				if _, err := catalog.ParseLocale(locale); err != nil {
					return fmt.Errorf("invalid locale %q", locale)
				}
			}
			err := app.Config.WriteToUserConfig(func(uc *config.UserConfig) error {
				uc.Locale = locale
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Stdout, "locale %s saved to %s\n", locale, app.Config.ConfigFilename())
			return nil
		}
		if path {
			fmt.Fprintln(app.Stdout, app.Config.ConfigFilename())
			return nil
		}
		uc := *app.Config.UserConfig
		if defaults {
			uc = config.GetDefaultConfig()
		}
		// copies, so masking keys leaves the live config alone
		masked := make(config.Providers, 0, len(uc.Providers))
		for _, p := range uc.Providers {
			cp := *p
			if cp.APIKey != "" {
				cp.APIKey = "****"
			}
			masked = append(masked, &cp)
		}
		uc.Providers = masked
		return printYAML(app.Stdout, uc)
	}}
}
