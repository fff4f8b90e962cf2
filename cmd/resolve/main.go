package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/apibase/internal/dsn"
	"github.com/eugenenazirov/apibase/internal/endpoint"
	"github.com/eugenenazirov/apibase/internal/logging"
)

func main() {
	logger, err := logging.New("warn")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(os.Args[1:], os.Stdout, endpoint.FromOS); err != nil {
		logger.Error("resolution failed", zap.Error(err))
		os.Exit(1)
	}
}

// run parses args and executes the selected command. osEnv supplies the
// process environment layered over any --env-file values.
func run(args []string, stdout io.Writer, osEnv func() endpoint.Env) error {
	app := kingpin.New("apibase-resolve", "Print the API base URL a client build should use")
	app.UsageWriter(stdout)
	envFiles := app.Flag("env-file", "Dotenv file read before the process environment (repeatable)").Strings()

	urlCmd := app.Command("url", "Print the resolved API base URL").Default()
	profileName := urlCmd.Flag("profile", "Resolution profile (react or vercel); defaults to the build profile").String()
	mode := urlCmd.Flag("mode", "Force the execution mode instead of reading the profile's mode variable").String()
	asJSON := urlCmd.Flag("json", "Print the full resolution as JSON").Bool()

	databaseCmd := app.Command("database", "Print the database URL with the password redacted")
	profilesCmd := app.Command("profiles", "List resolution profiles")

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	loadEnv := func() (endpoint.Env, error) {
		fileEnv, err := endpoint.LoadDotenv(*envFiles...)
		if err != nil {
			return nil, err
		}
		return endpoint.Merge(fileEnv, osEnv()), nil
	}

	switch command {
	case urlCmd.FullCommand():
		env, err := loadEnv()
		if err != nil {
			return err
		}
		return printURL(stdout, env, *profileName, *mode, *asJSON)
	case databaseCmd.FullCommand():
		env, err := loadEnv()
		if err != nil {
			return err
		}
		value, source, err := dsn.Resolve(env)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%s (from %s)\n", dsn.Redact(value), source)
		return err
	case profilesCmd.FullCommand():
		return printProfiles(stdout)
	}
	return fmt.Errorf("unknown command %q", command)
}

func printURL(w io.Writer, env endpoint.Env, profileName, mode string, asJSON bool) error {
	profile, err := endpoint.LookupProfile(profileName)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = profile.Mode(env)
	}

	resolved, err := profile.Resolve(mode, env)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}
	_, err = fmt.Fprintln(w, resolved.BaseURL)
	return err
}

func printProfiles(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMODE VARIABLE\tDEFAULT\tDESCRIPTION")
	for _, p := range endpoint.Profiles() {
		name := p.Name
		if p.Name == endpoint.DefaultProfile().Name {
			name += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, p.ModeKey, p.Default, p.Description)
	}
	return tw.Flush()
}
