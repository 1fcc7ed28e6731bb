package cmd

import (
	"bufio"
	"fmt"
	log2 "log"
	"net/http"
	"os"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/riptano/table-data-demo/config"
	"github.com/riptano/table-data-demo/db"
	"github.com/riptano/table-data-demo/demo"
	"github.com/riptano/table-data-demo/log"
	"github.com/riptano/table-data-demo/people"
	"github.com/riptano/table-data-demo/rest"
	"github.com/riptano/table-data-demo/store"
)

// Environment variables prefixed with "TABLE_DEMO_" can override settings e.g. "TABLE_DEMO_HOSTS"
const envVarPrefix = "table_demo"

var cfgFile string
var logger log.Logger

var demoCmd = &cobra.Command{
	Use:   os.Args[0] + " --hosts [HOSTS] --keyspace [KEYSPACE] [OPTIONS]",
	Short: "Walks through the table-storage operations, or serves them over REST",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.SettingsFromViper(viper.GetViper())
		if err != nil {
			logger.Fatal("invalid configuration", "error", err)
		}

		dbClient, err := db.NewDb(settings.Username, settings.Password, settings.Hosts...)
		if err != nil {
			logger.Fatal("unable to connect to cluster",
				"hosts", settings.Hosts,
				"error", err)
		}

		tableStore := store.New(dbClient, settings.Keyspace, config.New(logger))

		if viper.GetBool("start-rest") {
			serveREST(tableStore)
			return
		}

		opts := demo.Options{
			PartitionKey: viper.GetString("partition-key"),
			FirstName:    viper.GetString("first-name"),
		}
		if err := demo.Run(tableStore, opts, logger); err != nil {
			logger.Error("walkthrough failed", "error", err)
			waitForAck()
			os.Exit(1)
		}
	},
}

// Execute runs the demo walkthrough or starts the REST endpoint
func Execute() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log2.Fatalf("unable to initialize logger: %v", err)
	}

	logger = log.NewZapLogger(zapLogger)

	flags := demoCmd.PersistentFlags()

	flags.StringVarP(&cfgFile, "config", "c", "", "config file")
	flags.StringSliceP("hosts", "t", nil, "hosts for connecting to the database")
	flags.String("keyspace", "", "keyspace holding the demo tables")
	flags.StringP("username", "u", "", "connect with database username")
	flags.StringP("password", "p", "", "database user's password")

	// Walkthrough flags
	flags.String("partition-key", "demo", "partition key the walkthrough writes under")
	flags.String("first-name", "Simon", "replacement first name used by the update step")

	// REST specific flags
	flags.Bool("start-rest", false, "start the REST endpoint instead of the walkthrough")
	flags.Int("port", 8080, "REST endpoint port")
	flags.Bool("request-logging", false, "enable request logging")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name != "config" {
			viper.BindPFlag(flag.Name, flags.Lookup(flag.Name))
		}
	})

	cobra.OnInitialize(initialize)

	viper.SetEnvPrefix(envVarPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := demoCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initialize() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Info("using config file",
				"file", viper.ConfigFileUsed())
		}
	}
}

func serveREST(tableStore *store.Store) {
	repo, err := store.NewRepository[*people.Person](tableStore)
	if err != nil {
		logger.Fatal("unable to build people repository", "error", err)
	}

	router := httprouter.New()
	for _, route := range rest.Routes(repo, logger) {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}

	handler := http.Handler(router)
	if viper.GetBool("request-logging") {
		handler = log.NewLoggingHandler(handler, logger)
	}

	port := viper.GetInt("port")
	logger.Info("server listening", "port", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler); err != nil {
		logger.Fatal("unable to start server",
			"port", port,
			"error", err)
	}
}

// waitForAck holds the process open until the failure is acknowledged.
func waitForAck() {
	fmt.Fprintln(os.Stderr, "press enter to exit")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}
