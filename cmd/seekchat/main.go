package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/conf"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/injector"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

var (
	configFile = flag.String("config", "", "config file path")
	envFile    = flag.String("env", ".env", "dotenv file with API keys")
	debug      = flag.Bool("debug", false, "log at debug level")
	logFile    = flag.String("log-file", "", "also write logs to this file")
)

func main() {
	flag.Parse()

	// .env is optional
	_ = godotenv.Load(*envFile)

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config: "+err.Error())
		os.Exit(1)
	}

	var opts []logger.Option
	if *debug {
		opts = append(opts, logger.Debugging())
	}
	if *logFile != "" {
		opts = append(opts, logger.WithFile(*logFile))
	}
	log, err := logger.NewWithOptions(&config.Log, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger: "+err.Error())
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		log.Fatal("failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	if err := run(app); err != nil {
		log.Error("session ended with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(app *injector.App) error {
	ctx := context.Background()
	if err := app.Conversation.Load(ctx); err != nil {
		return err
	}

	s := &session{
		conversation: app.Conversation,
		terminal:     app.Terminal,
		canvas:       app.Canvas,
		exportDir:    app.Config.Export.Dir,
		out:          os.Stdout,
		copyFn:       clipboard.WriteAll,
		now:          time.Now,
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	historyFile := historyPath(app.Config)
	loadHistory(line, historyFile)
	defer func() {
		saveHistory(line, historyFile)
		line.Close()
	}()

	// Ctrl+C at the prompt is handled by liner, while waiting it only prints a notice
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			s.interrupt()
		}
	}()

	cfg := app.Conversation.Config()
	fmt.Println(promptStyle.Render("SeekCompass AI") + infoStyle.Render(fmt.Sprintf("  %s / %s  (/help for commands)", cfg.Provider, cfg.ModelID)))
	if err := s.replay(ctx); err != nil {
		return err
	}

	for {
		input, err := line.Prompt("seekchat> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}
		if recordable(input) {
			line.AppendHistory(input)
		}

		if err := s.handleLine(ctx, input); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(os.Stderr, errorStyle.Render("[Error]")+" "+errorText(err))
		}
	}
}

func historyPath(config *conf.Config) string {
	dir, err := config.StorageDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "prompt_history")
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
}

// saveHistory 历史文件仅当前用户可读写
func saveHistory(line *liner.State, path string) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
