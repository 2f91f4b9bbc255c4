// Command driver runs a story on the Storyloom engine: single-player
// at the terminal, or as a multi-user world over telnet and websocket.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/accounts"
	"github.com/storyloom/storyloom/pkg/driver"
	"github.com/storyloom/storyloom/pkg/ioadapt"
	"github.com/storyloom/storyloom/pkg/savegame"
	"github.com/storyloom/storyloom/stories/demo"
)

// exitCodeSaveMismatch is the process exit code for incompatible save
// data, so wrappers can distinguish it from a crash.
const exitCodeSaveMismatch = 10

var opts struct {
	game     string
	mode     string
	delayMS  int
	gui      bool
	web      bool
	webAddr  string
	verify   bool
	accounts string
}

func main() {
	root := &cobra.Command{
		Use:          "driver",
		Short:        "Run a story on the Storyloom engine",
		SilenceUsage: true,
		RunE:         run,
	}
	root.PersistentFlags().StringVar(&opts.game, "game", "", "story directory with story.yaml and resources (default: built-in demo)")
	root.Flags().StringVar(&opts.mode, "mode", "if", "interaction mode: if (single player) or mud (multi user)")
	root.Flags().IntVar(&opts.delayMS, "delay", 0, "output delay per paragraph in milliseconds (if mode)")
	root.Flags().BoolVar(&opts.gui, "gui", false, "run with a graphical interface")
	root.Flags().BoolVar(&opts.web, "web", false, "serve the websocket gateway (mud mode)")
	root.Flags().StringVar(&opts.webAddr, "web-addr", ":8181", "websocket gateway listen address")
	root.Flags().BoolVar(&opts.verify, "verify", false, "verify saved games against the story and exit")
	root.Flags().StringVar(&opts.accounts, "accounts", "", "account database path (mud mode; default <game>/accounts.db)")
	root.AddCommand(backupCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if opts.gui {
		return errors.New("this build has no GUI adapter; run without --gui")
	}

	mode := driver.Mode(opts.mode)
	if mode != driver.ModeIF && mode != driver.ModeMUD {
		return fmt.Errorf("unknown mode %q, want if or mud", opts.mode)
	}

	log, err := newLogger(mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	story := demo.New()
	if opts.game != "" {
		cfg, err := driver.LoadStoryConfig(filepath.Join(opts.game, "story.yaml"))
		if err != nil {
			return err
		}
		story.SetConfig(cfg)
	}

	d, err := driver.New(story, mode, log)
	if err != nil {
		return err
	}
	d.Metrics = driver.NewMetrics(time.Now())
	if opts.game != "" {
		d.SaveDir = opts.game
	}

	if opts.verify {
		return verifySaves(d)
	}

	switch mode {
	case driver.ModeIF:
		return runIF(d, log)
	default:
		return runMUD(d, log)
	}
}

// newLogger builds the mode-appropriate zap logger: human-readable in
// a terminal session, JSON for a server.
func newLogger(mode driver.Mode) (*zap.Logger, error) {
	if mode == driver.ModeIF {
		cfg := zap.NewDevelopmentConfig()
		// Keep the story text clean; engine chatter goes to a file.
		cfg.OutputPaths = []string{"driver.log"}
		return cfg.Build()
	}
	return zap.NewProduction()
}

func verifySaves(d *driver.Driver) error {
	err := d.VerifySavegame()
	switch {
	case err == nil:
		fmt.Println("Saved games are compatible with this story.")
		return nil
	case errors.Is(err, savegame.ErrNoSnapshot):
		fmt.Println("No saved games found.")
		return nil
	case errors.Is(err, savegame.ErrVersionMismatch):
		fmt.Println("Saved games are NOT compatible:", err)
		os.Exit(exitCodeSaveMismatch)
		return nil
	default:
		return err
	}
}

func runIF(d *driver.Driver, log *zap.Logger) error {
	console := ioadapt.NewConsole()
	if opts.delayMS > 0 {
		console.SetDelay(time.Duration(opts.delayMS) * time.Millisecond)
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		for range interrupts {
			console.Break()
		}
	}()

	d.NewConnection(console)
	os.Exit(d.MainLoop())
	return nil
}

func runMUD(d *driver.Driver, log *zap.Logger) error {
	accPath := opts.accounts
	if accPath == "" {
		accPath = filepath.Join(opts.game, "accounts.db")
	}
	store, err := accounts.Open(accPath)
	if err != nil {
		return fmt.Errorf("account store: %w", err)
	}
	defer store.Close()
	d.Accounts = store

	telnet := ioadapt.NewTelnetServer(d, log)
	addr := fmt.Sprintf("%s:%d", d.Config.MudHost, d.Config.MudPort)
	if err := telnet.Listen(addr); err != nil {
		return err
	}
	go func() {
		if err := telnet.Serve(); err != nil {
			log.Error("telnet server stopped", zap.Error(err))
		}
	}()
	defer telnet.Close()

	if opts.web {
		ws := ioadapt.NewWebServer(d, log, ioadapt.WebConfig{Addr: opts.webAddr})
		go func() {
			if err := ws.Start(); err != nil {
				log.Error("web server stopped", zap.Error(err))
			}
		}()
	}

	if opts.game != "" {
		watcher, err := ioadapt.NewWatcher(opts.game, log, func(path string) {
			log.Info("story resource changed on disk, wizards may reload", zap.String("path", path))
		})
		if err != nil {
			log.Warn("resource watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("shutdown signal received")
		d.Stop(0)
	}()

	os.Exit(d.MainLoop())
	return nil
}
