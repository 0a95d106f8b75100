// Command tinyjs is the tinyjs interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"nickandperla.net/tinyjs/internal/config"
	"nickandperla.net/tinyjs/pkg/tinyjs"
)

var log = commonlog.GetLogger("tinyjs.cli")

// startupName is the function run after a file or piped program, or loaded
// from the store when there is no input at all.
const startupName = "__startup__"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// console receives script output. In raw terminal mode newlines need a
// carriage return.
type console struct {
	w   io.Writer
	raw bool
}

func (c *console) write(text string) error {
	if c.raw {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	_, err := io.WriteString(c.w, text)
	return err
}

func (c *console) println(text string) error {
	err := c.write(text + "\n")
	if err != nil {
		log.Warningf("console write: %v", err)
	}
	return err
}

// settings is the merge of the config file and the command line.
type settings struct {
	db        string
	mode      tinyjs.PersistMode
	noStdlib  bool
	noNatives bool
	dump      string
	verbosity int
	logPath   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tinyjs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr     = fs.String("e", "", "Evaluate tinyjs string")
		file        = fs.String("f", "", "Execute tinyjs file")
		dbPath      = fs.String("db", "tinyjs.db", "SQLite database path")
		configPath  = fs.String("config", "", "Config file (default: tinyjs.toml in the working directory or a parent)")
		persistMode = fs.String("persist-mode", "on_demand", "Persistence mode: on_demand, always, or never")
		compile     = fs.Bool("compile", false, "Compile mode: run program then persist all definitions")
		noStdlib    = fs.Bool("no-stdlib", false, "Disable standard library prelude")
		noNatives   = fs.Bool("no-natives", false, "Disable print, persist and load")
		dump        = fs.String("dump", "", "Dump the global scope after running: yaml")
		verbosity   = fs.Int("v", 0, "Log verbosity")
		logFile     = fs.String("log", "", "Log file (default: stderr)")
		history     = fs.String("history", "", "Print the stored versions of a binding and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s := settings{
		db:        cfg.DBPath(),
		noStdlib:  !*cfg.Runtime.Stdlib || *noStdlib,
		noNatives: !*cfg.Runtime.Natives || *noNatives,
		dump:      cfg.Output.Dump,
		verbosity: cfg.Log.Verbosity,
		logPath:   cfg.LogPath(),
	}
	if set["db"] || s.db == "" {
		s.db = *dbPath
	}
	modeText := cfg.Runtime.PersistMode
	if set["persist-mode"] {
		modeText = *persistMode
	}
	if set["dump"] {
		s.dump = *dump
	}
	if set["v"] {
		s.verbosity = *verbosity
	}
	if set["log"] {
		s.logPath = *logFile
	}

	if *compile {
		// Compile mode: automatically persist all definitions
		s.mode = tinyjs.PersistAlways
	} else {
		mode, ok := tinyjs.ParsePersistMode(modeText)
		if !ok {
			fmt.Fprintf(stderr, "Unknown persist mode: %s (use on_demand, always, or never)\n", modeText)
			return 1
		}
		s.mode = mode
	}
	if s.dump != "" && s.dump != "yaml" {
		fmt.Fprintf(stderr, "Unknown dump format: %s (use yaml)\n", s.dump)
		return 1
	}

	if s.logPath != "" {
		commonlog.Configure(s.verbosity, &s.logPath)
	} else {
		commonlog.Configure(s.verbosity, nil)
	}

	con := &console{w: stdout}
	opts := []tinyjs.Option{
		tinyjs.WithSQLiteStore(s.db),
		tinyjs.WithOutputWriter(con.write),
		tinyjs.WithPersistMode(s.mode),
	}
	if s.noStdlib {
		opts = append(opts, tinyjs.WithNoStdlib())
	}
	if s.noNatives {
		opts = append(opts, tinyjs.WithNoNatives())
	}

	runtime, err := tinyjs.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	if *history != "" {
		versions, err := runtime.History(*history, 0)
		if err != nil {
			return fail(stderr, "Error", err)
		}
		for _, v := range versions {
			if err := con.println(fmt.Sprintf("v%d %s %s", v.Version, v.Time, v.Value)); err != nil {
				return fail(stderr, "Error writing output", err)
			}
		}
		return 0
	}

	var result string

	// Step 1: Run the file if specified
	if *file != "" {
		if _, err = runtime.EvalFile(*file); err != nil {
			return fail(stderr, "Error in "+*file, err)
		}
	}

	// Step 2: Run -e expression if provided (runs BEFORE __startup__)
	if *evalStr != "" {
		result, err = runtime.Eval(*evalStr)
		if err != nil {
			return fail(stderr, "Error", err)
		}
		if result != "" {
			if err := con.println(result); err != nil {
				return fail(stderr, "Error writing output", err)
			}
		}
		result = ""
	}

	// Step 3: Determine main execution
	switch {
	case *file != "":
		if !*compile {
			result, err = startup(runtime)
		}

	case *evalStr != "":
		// -e only (no file), already executed above

	case !isTerminal(stdin):
		// Piped input (no file specified)
		input, readErr := io.ReadAll(stdin)
		if readErr != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", readErr)
			return 1
		}
		result, err = runtime.Eval(string(input))
		if err == nil && !*compile {
			var startupResult string
			startupResult, err = startup(runtime)
			if startupResult != "" {
				result = startupResult
			}
		}

	default:
		// No input: run __startup__ from the database, or fall back to the REPL
		if ok, _ := runtime.Load(startupName); ok && runtime.HasFunction(startupName) {
			result, err = startup(runtime)
		} else {
			runREPL(runtime, con, stdin)
			return 0
		}
	}

	if err != nil {
		return fail(stderr, "Error", err)
	}
	if result != "" {
		if err := con.println(result); err != nil {
			return fail(stderr, "Error writing output", err)
		}
	}

	if s.dump == "yaml" {
		if err := runtime.DumpYAML(stdout, false); err != nil {
			return fail(stderr, "Error dumping globals", err)
		}
	}
	return 0
}

// startup calls __startup__() when it is bound to a function.
func startup(runtime *tinyjs.Runtime) (string, error) {
	if !runtime.HasFunction(startupName) {
		return "", nil
	}
	log.Debugf("running %s", startupName)
	result, err := runtime.Eval(startupName + "();")
	if result == "undefined" {
		// no return value
		result = ""
	}
	return result, err
}

func fail(stderr io.Writer, prefix string, err error) int {
	log.Errorf("%s: %v", prefix, err)
	fmt.Fprintf(stderr, "%s: %v\n", prefix, err)
	return 1
}

// loadConfig reads the file named with -config, or looks for tinyjs.toml
// from the working directory up. Defaults apply when there is none.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
