// Command linkgen mints a tokenized link and appends it to the spreadsheet as unredeemed.
//
// It reads the same environment as the functions.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sheetlinks/sheetlinks/auth"
	jwtauth "github.com/sheetlinks/sheetlinks/auth/token/jwt"
	"github.com/sheetlinks/sheetlinks/auth/token/exchange"
	"github.com/sheetlinks/sheetlinks/config"
	"github.com/sheetlinks/sheetlinks/links"
	"github.com/sheetlinks/sheetlinks/spreadsheet"
)

func main() {
	var (
		baseURL string
		timeout time.Duration
		dryRun  bool
		debug   bool
	)

	flag.StringVar(&baseURL, "base-url", "", "Link template, e.g. https://example.com/register?token=")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Upstream call timeout")
	flag.BoolVar(&dryRun, "dry-run", false, "Print the link without storing it")
	flag.BoolVar(&debug, "debug", false, "Debug mode")

	flag.Parse()

	logger := zap.NewNop()
	if debug {
		var err error

		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	}

	if err := run(logger, baseURL, timeout, dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "linkgen: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *zap.Logger, baseURL string, timeout time.Duration, dryRun bool) error {
	if baseURL == "" {
		return fmt.Errorf("--base-url is required")
	}

	link, err := links.NewLink(baseURL)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println(link)

		return nil
	}

	c, err := config.FromEnv()
	if err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return err
	}

	credential, err := c.Credential()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	httpClient := &http.Client{Timeout: timeout}

	authenticator := auth.ServiceAccountAuthenticator{
		Builder:   jwtauth.NewAssertionBuilder(jwtauth.WithLogger(logger)),
		Exchanger: exchange.NewClient(exchange.WithHTTPClient(httpClient), exchange.WithLogger(logger)),
		Logger:    logger,
	}

	token, err := authenticator.Authenticate(ctx, credential, spreadsheet.AppendScope)
	if err != nil {
		return err
	}

	store := spreadsheet.NewClient(spreadsheet.WithHTTPClient(httpClient), spreadsheet.WithLogger(logger))

	_, err = store.Append(ctx, token, c.Target(), links.Row{Link: link, Status: links.StatusNew})
	if err != nil {
		return err
	}

	fmt.Println(link)

	return nil
}
