package sys

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	// Style definitions
	infoColor     = color.New(color.FgHiBlack)
	warnColor     = color.New(color.FgHiYellow)
	errorColor    = color.New(color.FgHiRed)
	fatalColor    = color.New(color.FgHiRed, color.Bold)
	databaseColor = color.New(color.FgHiBlack)
	economyColor  = color.New(color.FgHiYellow)
	levelsColor   = color.New(color.FgHiGreen)
	werewolfColor = color.New(color.FgHiMagenta)
	stocksColor   = color.New(color.FgHiCyan)
	betsColor     = color.New(color.FgHiCyan)
	voiceColor    = color.New(color.FgHiBlue)
	aiColor       = color.New(color.FgHiMagenta)
	webColor      = color.New(color.FgHiBlue)
	statusColor   = color.New(color.FgHiMagenta)

	IsSilent  = false
	LogToFile = false

	// Global default logger
	Logger *slog.Logger

	// Log file handling
	logFile *os.File
	logMu   sync.Mutex

	// Taps receive every formatted log line (uncolored). The dashboard
	// registers one to feed its live feed.
	logTaps   []func(line string)
	logTapsMu sync.RWMutex
)

func init() {
	InitLogger(false, false)
}

// InitLogger initializes the global structured logger.
func InitLogger(silent bool, saveToFile bool) {
	logMu.Lock()
	defer logMu.Unlock()

	IsSilent = silent
	LogToFile = saveToFile
	level := slog.LevelInfo
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		level = slog.LevelDebug
	}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writer io.Writer = os.Stdout
	var err error

	if LogToFile {
		logFile, err = os.OpenFile("ember.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open ember.log: %v\n", err)
		} else {
			writer = io.MultiWriter(os.Stdout, logFile)
		}
	}

	color.NoColor = false

	handler := NewBotLogHandler(writer, &BotLogHandlerOptions{
		Silent: IsSilent,
		Level:  level,
	})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func SetSilentMode(silent bool) {
	InitLogger(silent, LogToFile)
}

// RegisterLogTap subscribes f to every formatted log line.
func RegisterLogTap(f func(line string)) {
	logTapsMu.Lock()
	logTaps = append(logTaps, f)
	logTapsMu.Unlock()
}

func emitToTaps(line string) {
	logTapsMu.RLock()
	taps := logTaps
	logTapsMu.RUnlock()
	for _, t := range taps {
		t(line)
	}
}

// --- Log Functions ---

func LogInfo(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...interface{}) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

func LogFatal(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	slog.Log(context.Background(), slog.LevelError+4, msg) // Custom Fatal level
	os.Exit(1)
}

func LogDebug(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func logComponent(component, format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", component))
}

func LogDatabase(format string, v ...interface{}) { logComponent("database", format, v...) }
func LogEconomy(format string, v ...interface{})  { logComponent("economy", format, v...) }
func LogLevels(format string, v ...interface{})   { logComponent("levels", format, v...) }
func LogWerewolf(format string, v ...interface{}) { logComponent("werewolf", format, v...) }
func LogStocks(format string, v ...interface{})   { logComponent("stocks", format, v...) }
func LogBets(format string, v ...interface{})     { logComponent("bets", format, v...) }
func LogVoice(format string, v ...interface{})    { logComponent("voice", format, v...) }
func LogAI(format string, v ...interface{})       { logComponent("ai", format, v...) }
func LogWeb(format string, v ...interface{})      { logComponent("web", format, v...) }
func LogStatus(format string, v ...interface{})   { logComponent("status", format, v...) }

// --- Custom Slog Handler ---

type BotLogHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type BotLogHandler struct {
	w    io.Writer
	opts *BotLogHandlerOptions
	mu   *sync.Mutex
}

func NewBotLogHandler(w io.Writer, opts *BotLogHandlerOptions) *BotLogHandler {
	if opts == nil {
		opts = &BotLogHandlerOptions{Level: slog.LevelInfo}
	}
	return &BotLogHandler{
		w:    w,
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *BotLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *BotLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Silent {
		return nil
	}

	timeStr := time.Now().Format("15:04:05")
	var levelStr string
	var levelColor *color.Color

	switch {
	case r.Level >= slog.LevelError+4: // Fatal
		levelStr = "FATAL"
		levelColor = fatalColor
	case r.Level >= slog.LevelError:
		levelStr = "ERROR"
		levelColor = errorColor
	case r.Level >= slog.LevelWarn:
		levelStr = "WARN"
		levelColor = warnColor
	default:
		levelStr = "INFO"
		levelColor = infoColor
	}

	// Extract component if present
	component := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return false
		}
		return true
	})

	// Output: 15:04:05 [INFO] [COMPONENT] Message
	fmt.Fprintf(h.w, "%s", timeStr)

	if component != "" {
		if levelStr != "INFO" {
			fmt.Fprintf(h.w, " %s", levelColor.Sprintf("[%s]", levelStr))
		}
		compColor := getComponentColor(component)
		fmt.Fprintf(h.w, " %s\n", compColor.Sprintf("[%s] %s", component, r.Message))
		emitToTaps(fmt.Sprintf("%s [%s] [%s] %s", timeStr, levelStr, component, r.Message))
	} else {
		fmt.Fprintf(h.w, " %s\n", levelColor.Sprintf("[%s] %s", levelStr, r.Message))
		emitToTaps(fmt.Sprintf("%s [%s] %s", timeStr, levelStr, r.Message))
	}

	return nil
}

func (h *BotLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *BotLogHandler) WithGroup(name string) slog.Handler       { return h }

func getComponentColor(name string) *color.Color {
	switch name {
	case "DATABASE":
		return databaseColor
	case "ECONOMY":
		return economyColor
	case "LEVELS":
		return levelsColor
	case "WEREWOLF":
		return werewolfColor
	case "STOCKS":
		return stocksColor
	case "BETS":
		return betsColor
	case "VOICE":
		return voiceColor
	case "AI":
		return aiColor
	case "WEB":
		return webColor
	case "STATUS":
		return statusColor
	default:
		return color.New(color.FgCyan)
	}
}

// @sys
const (
	// Configuration
	MsgConfigFailedToLoad = "Failed to load config: %v"
	MsgConfigMissingToken = "DISCORD_TOKEN is not set in .env file"

	// Data layer
	MsgDatabaseInitSuccess   = "Database initialized successfully"
	MsgDatabaseMigrateFailed = "Failed to apply migrations: %w"
	MsgDatabasePingFailed    = "Failed to reach database: %w"

	// Command Registry
	MsgLoaderRegistering        = "Registering commands..."
	MsgLoaderGuildRegister      = "Registering commands to guild: %s"
	MsgLoaderGlobalClear        = "Clearing global commands..."
	MsgLoaderGlobalCleared      = "Global commands cleared."
	MsgLoaderGlobalClearFail    = "Failed to clear global commands: %v"
	MsgLoaderCommandRegistered  = "Registered guild command: %s"
	MsgLoaderRegisteringGlobal  = "Registering commands globally..."
	MsgLoaderRegisterGlobalFail = "failed to register global commands: %w"
	MsgLoaderGlobalRegistered   = "Registered global command: %s"

	// Bot Lifecycle
	MsgBotReady         = "%s is online! (ID: %s) (PID: %d)"
	MsgBotShutdown      = "Shutting down %s..."
	MsgBotKillingOld    = "Killing running instance... (PID: %d)"
	MsgBotKillFail      = "Failed to kill old instance: %v"
	MsgBotOldTerminated = "Old instance terminated."
	MsgBotPIDWriteFail  = "Failed to write PID file: %v"
	MsgBotRegisterFail  = "Command registration failed: %v"
)

// @economy
const (
	ErrEconomyNotEnoughCoins = "You don't have enough coins for that."
	ErrEconomySelfPay        = "You can't pay yourself."
	ErrEconomyBadAmount      = "The amount must be a positive number."
	ErrEconomyGeneric        = "Something went wrong with the economy. Try again."
	MsgEconomyDailyClaimed   = "You already claimed your daily reward. Come back <t:%d:R>."
)

// @ai
const (
	ErrAIDisabled    = "The AI relay is not configured on this bot."
	ErrAIRateLimited = "Slow down! Too many AI requests in this channel."
	ErrAIFailed      = "The AI provider did not answer. Try again later."
)
