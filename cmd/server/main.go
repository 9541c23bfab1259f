// @title         StuImpact API
// @version       1.0
// @description   Opportunity search, contact intake and accounts for the StuImpact student volunteering portal.
// @BasePath      /api/v1
// @schemes       http https
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token, either "Bearer <JWT>" or "<JWT>".
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/stuimpact/stuimpactweb2/docs"
	"github.com/stuimpact/stuimpactweb2/pkg/config"
	"github.com/stuimpact/stuimpactweb2/pkg/logger"
)

const serviceName = "stuimpact-api"

func main() {
	root := &cobra.Command{
		Use:           "stuimpact",
		Short:         "StuImpact opportunity portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cfg := config.Load()
			logger.Init(serviceName, cfg.AppEnv, cfg.LogLevel)
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), findCmd(), contactCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
