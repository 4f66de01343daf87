package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sheetlinks/sheetlinks/auth"
	jwtauth "github.com/sheetlinks/sheetlinks/auth/token/jwt"
	"github.com/sheetlinks/sheetlinks/auth/token/exchange"
	"github.com/sheetlinks/sheetlinks/config"
	"github.com/sheetlinks/sheetlinks/function"
	"github.com/sheetlinks/sheetlinks/spreadsheet"
)

func main() {
	var (
		configFile string
		addr       string
		debug      bool
	)

	flag.StringVar(&configFile, "config", "", "Server configuration file (YAML)")
	flag.StringVar(&addr, "addr", "", "Address to listen on (overrides the configuration file)")
	flag.BoolVar(&debug, "debug", false, "Debug mode")

	flag.Parse()

	serverConfig, err := loadServerConfig(configFile)
	if err != nil {
		panic(err)
	}

	if flag.CommandLine.Changed("addr") {
		serverConfig.Addr = addr
	}

	if flag.CommandLine.Changed("debug") {
		serverConfig.Debug = debug
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	if serverConfig.Debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	}
	defer logger.Sync()

	httpClient := &http.Client{
		Timeout: serverConfig.UpstreamTimeout,
	}

	storeOpts := []spreadsheet.Option{
		spreadsheet.WithHTTPClient(httpClient),
		spreadsheet.WithLogger(logger),
	}
	if serverConfig.SheetsEndpoint != "" {
		storeOpts = append(storeOpts, spreadsheet.WithEndpoint(serverConfig.SheetsEndpoint))
	}

	functions := function.Functions{
		Authenticator: auth.ServiceAccountAuthenticator{
			Builder:   jwtauth.NewAssertionBuilder(jwtauth.WithLogger(logger)),
			Exchanger: exchange.NewClient(exchange.WithHTTPClient(httpClient), exchange.WithLogger(logger)),
			Logger:    logger,
		},
		Store:         spreadsheet.NewClient(storeOpts...),
		LoadConfig:    config.FromEnv,
		TokenEndpoint: serverConfig.TokenEndpoint,
		Logger:        logger,
	}

	server := function.Server{
		Functions: functions,
	}

	router := mux.NewRouter()
	router.Path("/append-link").HandlerFunc(server.AppendLinkHandler)
	router.Path("/check-token").HandlerFunc(server.CheckTokenHandler)

	logger.Sugar().Infof("Listening on %s", serverConfig.Addr)

	err = http.ListenAndServe(serverConfig.Addr, router)
	if err != nil {
		logger.Sugar().Infof("Error serving: %v", err)
	}
}

func loadServerConfig(file string) (config.Server, error) {
	if file == "" {
		return config.DefaultServer(), nil
	}

	f, err := os.Open(file)
	if err != nil {
		return config.Server{}, err
	}
	defer f.Close()

	return config.LoadServer(f)
}
