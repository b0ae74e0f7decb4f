package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ashvale/ember/src/ai"
	"github.com/ashvale/ember/src/cmd"
	_ "github.com/ashvale/ember/src/proc"
	"github.com/ashvale/ember/src/sys"
	"github.com/ashvale/ember/src/web"
)

func main() {
	silent := flag.Bool("silent", false, "Disable all log output")
	flag.Parse()

	if *silent {
		sys.SetSilentMode(true)
	}

	// Check for and kill an old instance.
	if pidData, err := os.ReadFile(".bot.pid"); err == nil {
		if oldPid, err := strconv.Atoi(string(pidData)); err == nil && oldPid != os.Getpid() {
			if process, err := os.FindProcess(oldPid); err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					sys.LogInfo(sys.MsgBotKillingOld, oldPid)
					if err := process.Signal(syscall.SIGTERM); err == nil {
						for i := 0; i < 50; i++ {
							if err := process.Signal(syscall.Signal(0)); err != nil {
								break
							}
							time.Sleep(100 * time.Millisecond)
						}
						sys.LogInfo(sys.MsgBotOldTerminated)
					} else {
						sys.LogWarn(sys.MsgBotKillFail, err)
					}
				}
			}
		}
	}

	pid := os.Getpid()
	if err := os.WriteFile(".bot.pid", []byte(fmt.Sprintf("%d", pid)), 0644); err != nil {
		sys.LogWarn(sys.MsgBotPIDWriteFail, err)
	}
	defer os.Remove(".bot.pid")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	if err := run(pid, sc, *silent); err != nil {
		sys.LogFatal("%v", err)
	}
}

func run(pid int, shutdownChan <-chan os.Signal, silent bool) error {
	cfg, err := sys.LoadConfig()
	if err != nil {
		return fmt.Errorf(sys.MsgConfigFailedToLoad, err)
	}

	ctx := context.Background()

	// Connect and migrate before anything touches the schema.
	if err := sys.InitDatabase(ctx, cfg.MySQLDSN); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sys.CloseDatabase()

	// AI relay is optional; a nil agent leaves /ask disabled.
	agent, err := ai.NewAgent(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	cmd.SetAIAgent(agent)
	if agent != nil {
		sys.LogAI("relay enabled (%s, %s)", agent.Provider(), agent.Model())
	}

	s, err := sys.CreateSession(cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	defer s.Close()

	// Command registration runs in the background; the gateway is already up.
	go func() {
		if err := sys.RegisterCommands(s, cfg.GuildID); err != nil {
			sys.LogError(sys.MsgBotRegisterFail, err)
		}
	}()

	sys.TriggerSessionReady(s)
	sys.StartDaemons(s)

	var dashboard *web.Server
	if cfg.DashboardEnabled {
		dashboard = web.NewServer(cfg.DashboardAddr, cfg.GuildID)
		dashboard.Start()
	}

	sys.LogInfo(sys.MsgBotReady, s.State.User.Username, s.State.User.ID, pid)
	<-shutdownChan
	if !silent {
		fmt.Println()
	}
	sys.LogInfo(sys.MsgBotShutdown, s.State.User.Username)

	if dashboard != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dashboard.Shutdown(shutdownCtx); err != nil {
			sys.LogWeb("dashboard shutdown: %v", err)
		}
	}
	return nil
}
