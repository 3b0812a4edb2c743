// Command interest parses a loan interest notification, splits the amount
// among the branch's investors and sends the payment request over Telegram.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmyang-dev/ainews-harvester/internal/config"
	"github.com/jmyang-dev/ainews-harvester/internal/interest"
	"github.com/jmyang-dev/ainews-harvester/internal/logger"
	"github.com/jmyang-dev/ainews-harvester/internal/notify"
)

func main() {
	message := flag.String("message", "", "notification message text (reads stdin when empty)")
	investorsFile := flag.String("investors", "", "per-branch investor table (JSON)")
	send := flag.Bool("send", false, "send the request via Telegram instead of printing")
	flag.Parse()

	if err := run(*message, *investorsFile, *send); err != nil {
		fmt.Fprintf(os.Stderr, "interest: %v\n", err)
		os.Exit(1)
	}
}

func run(message, investorsFile string, send bool) error {
	if message == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		message = string(raw)
	}

	notice, err := interest.ParseNotice(message)
	if err != nil {
		return err
	}

	investors := map[string][]interest.Investor{}
	if investorsFile != "" {
		investors, err = interest.LoadInvestors(investorsFile)
		if err != nil {
			return err
		}
	}

	distribution := interest.Distribute(notice.Amount, notice.Branch, investors)
	request := interest.BuildRequestMessage(distribution, notice.Amount, notice.Branch, message)

	if !send {
		fmt.Println(request)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notifier := notify.NewNotifier(nil, log, cfg.TelegramBotToken, cfg.TelegramChatID)
	if !notifier.Send(ctx, request) {
		return fmt.Errorf("telegram send failed")
	}
	return nil
}
