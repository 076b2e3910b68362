package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/config"
	"github.com/Ashmit111/secure-scan/internal/monitor"
	"github.com/Ashmit111/secure-scan/internal/probe"
	"github.com/Ashmit111/secure-scan/internal/store/memory"
)

// watch runs a live monitoring session for one site in the terminal:
// one check immediately, then one per interval, until Ctrl-C.
func main() {
	cfg := config.FromEnv()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter a site URL to watch (e.g., https://example.com): ")
	raw, _ := reader.ReadString('\n')

	target, err := monitor.NormalizeURL(strings.TrimSpace(raw))
	if err != nil {
		fmt.Println("Invalid URL.")
		os.Exit(1)
	}

	ctrl := monitor.NewController(zap.NewNop(), probe.NewHTTPChecker(cfg.TrackTimeout), memory.New(), nil, monitor.Config{
		CheckTimeout: cfg.CheckTimeout,
		TrackTimeout: cfg.TrackTimeout,
		AlertTimeout: cfg.AlertTimeout,
	})

	session := monitor.NewLiveSession(ctrl, target, "", cfg.LiveInterval, 0)
	session.OnCycle = func(res monitor.CycleResult) {
		if res.Err != nil {
			fmt.Printf("[%s] cycle failed: %v\n", res.At.Format("15:04:05"), res.Err)
			return
		}
		r := res.Report
		mark := "DOWN"
		if r.IsUp {
			mark = "UP"
		}
		if r.Err != "" {
			fmt.Printf("[%s] %-4s %s (%s) %s\n", res.At.Format("15:04:05"), mark, r.URL, r.ResponseTime, r.Err)
			return
		}
		fmt.Printf("[%s] %-4s %s HTTP %d (%s)\n", res.At.Format("15:04:05"), mark, r.URL, r.Status, r.ResponseTime)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s every %s. Ctrl-C to stop.\n", target, cfg.LiveInterval)
	session.Start(ctx)
	<-ctx.Done()
	session.Stop()

	history := session.History()
	up := 0
	for _, res := range history {
		if res.Err == nil && res.Report.IsUp {
			up++
		}
	}
	fmt.Printf("\nStopped. %d/%d checks up in the last window.\n", up, len(history))
}
