package main

import (
	"context"
	"fmt"
)

// run dispatches the CLI and returns the process exit code. Signal handling
// wraps every command: SIGINT and SIGTERM cancel the command's context so a
// long build stops between pipeline stages.
func run(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "build":
		return runBuildCmd(ctx, rest, env)
	case "cover":
		return runCoverCmd(ctx, rest, env)
	case "toc":
		return runTOCCmd(ctx, rest, env)
	case "clean":
		return runCleanCmd(rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "preview":
		return runPreviewCmd(ctx, rest, env)
	case "serve":
		return runServeCmd(ctx, rest, env)
	case "stats":
		return runStatsCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "bookpress %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}
