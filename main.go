package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paulokuong/airflow-run/models"
	"github.com/paulokuong/airflow-run/services/config"
	"github.com/paulokuong/airflow-run/services/docker"
	"github.com/paulokuong/airflow-run/services/logging"
	"github.com/paulokuong/airflow-run/services/orchestrator"
	"github.com/paulokuong/airflow-run/services/probe"
)

// options holds the flag surface of the CLI.
type options struct {
	Run            string // service to run
	Queue          string // celery queue a worker consumes (required with --run worker)
	Build          bool   // build the engine image, push when private_registry is set
	Dockerfile     string // dockerfile used by --build
	Config         string // config file path, overrides AIRFLOWRUN_CONFIG_PATH
	GenerateConfig bool   // write a starter config and exit
	List           bool   // list managed containers
	Kill           string // stop a managed container by name
	Pull           bool   // pull the engine image
	Debug          bool   // debug logging
	WorkerLogPort  int    // host port for the worker log server
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "airflow-run",
		Short:         "Run an Airflow cluster piece by piece on local Docker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Run, "run", "", "service to run: "+serviceList())
	cmd.Flags().StringVar(&opts.Queue, "queue", "", "celery queue for --run worker")
	cmd.Flags().BoolVar(&opts.Build, "build", false, "build the engine image, push when private_registry is set")
	cmd.Flags().StringVar(&opts.Dockerfile, "dockerfile", "./Dockerfile", "dockerfile used by --build")
	cmd.Flags().StringVar(&opts.Config, "config", "", "config file path (default $AIRFLOWRUN_CONFIG_PATH, then ./config.yaml)")
	cmd.Flags().BoolVar(&opts.GenerateConfig, "generate_config", false, "write a starter config file and exit")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list containers started by this tool")
	cmd.Flags().StringVar(&opts.Kill, "kill", "", "stop the named managed container")
	cmd.Flags().BoolVar(&opts.Pull, "pull", false, "pull the engine image")
	cmd.Flags().BoolVar(&opts.Debug, "log", false, "debug logging")
	cmd.Flags().IntVar(&opts.WorkerLogPort, "worker_log_server_port", 8793, "host port for the worker log server (published only when set)")

	return cmd
}

// execute runs exactly one action per invocation. When several action
// flags are set, the first match below wins.
func execute(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()

	logger := logging.New(opts.Debug)
	defer func() { _ = logger.Sync() }()

	switch {
	case opts.GenerateConfig:
		path, err := config.Generate(config.ResolvePath(opts.Config))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil

	case opts.List:
		rt, err := docker.NewDockerRuntime(logger)
		if err != nil {
			return err
		}
		containers, err := rt.ListManaged(ctx)
		if err != nil {
			return err
		}
		for _, c := range containers {
			state := "stopped"
			if c.Running {
				state = "running"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.12s  %-7s  %s (%s)\n", c.ID, state, c.Name, c.Service)
		}
		return nil

	case opts.Kill != "":
		rt, err := docker.NewDockerRuntime(logger)
		if err != nil {
			return err
		}
		return rt.StopManaged(ctx, opts.Kill)

	case opts.Pull:
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return err
		}
		rt, err := docker.NewDockerRuntime(logger)
		if err != nil {
			return err
		}
		return rt.PullImage(ctx, cfg.EngineImageRef())

	case opts.Build:
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return err
		}
		rt, err := docker.NewDockerRuntime(logger)
		if err != nil {
			return err
		}
		return orchestrator.NewDispatcher(rt, nil, logger).Build(ctx, cfg, opts.Dockerfile)

	case opts.Run != "":
		service, err := models.ParseService(opts.Run)
		if err != nil {
			return err
		}
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return err
		}
		rt, err := docker.NewDockerRuntime(logger)
		if err != nil {
			return err
		}

		req := models.LaunchRequest{Service: service, Queue: opts.Queue}
		if cmd.Flags().Changed("worker_log_server_port") {
			req.WorkerLogPort = opts.WorkerLogPort
		}

		d := orchestrator.NewDispatcher(rt, probe.NewChecker(logger), logger)
		res, err := d.Launch(ctx, cfg, req)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%.12s)\n", service, res.State, res.ContainerID)
		return nil
	}

	return cmd.Help()
}

func serviceList() string {
	services := models.Services()
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// exitCode maps error kinds to distinct process exit codes so callers
// can tell configuration problems from runtime failures.
func exitCode(err error) int {
	var (
		parseErr      *config.ParseError
		validationErr *config.ValidationError
		missingErr    *orchestrator.MissingFieldError
		opErr         *docker.OperationError
		probeErr      *probe.UnreachableError
	)

	switch {
	case errors.Is(err, config.ErrNotFound):
		return 2
	case errors.As(err, &parseErr):
		return 3
	case errors.As(err, &validationErr):
		return 4
	case errors.As(err, &missingErr):
		return 5
	case errors.Is(err, docker.ErrUnavailable):
		return 6
	case errors.Is(err, docker.ErrAuthenticationFailed):
		return 8
	case errors.Is(err, docker.ErrPushFailed):
		return 9
	case errors.As(err, &opErr):
		return 7
	case errors.As(err, &probeErr):
		return 10
	}
	return 1
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := &options{}
	cmd := newRootCmd(opts)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
